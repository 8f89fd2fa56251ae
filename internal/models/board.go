package models

import "time"

// ScheduleSnapshot is the cached result of one schedule fetch for a room.
// Seq increases monotonically per fetch so that late responses for a room
// that is no longer selected can be recognised and left unrendered.
type ScheduleSnapshot struct {
	RoomID    int64          `json:"room_id"`
	Events    []Event        `json:"events"`
	MCs       []MCAssignment `json:"mcs"`
	FetchedAt time.Time      `json:"fetched_at"`
	Seq       uint64         `json:"seq"`
}

// ActiveContext describes the event currently airing in a room, fed to the
// rotation engine after every schedule refresh.
type ActiveContext struct {
	EventID   int64      `json:"event_id"`
	CallerIDs []int64    `json:"caller_ids"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// RotationOptions toggles which content classes participate in rotation.
type RotationOptions struct {
	ShowCallers        bool `json:"show_callers"`
	ShowAdvertisements bool `json:"show_advertisements"`
	LockActive         bool `json:"lock_active"`
}

// RotationEnabled reports whether any content class is displayed at all.
func (o RotationOptions) RotationEnabled() bool {
	return o.ShowCallers || o.ShowAdvertisements
}

// BoardEvent decorates an Event with display names for the board. DanceTypes
// shadows the embedded comma string so the board payload carries a list.
type BoardEvent struct {
	Event
	DanceTypes  []string `json:"dance_types"`
	CallerNames []string `json:"caller_names"`
	Active      bool     `json:"active"`
}

// BoardMC decorates an MC assignment with its caller's display name.
type BoardMC struct {
	MCAssignment
	CallerName string `json:"caller_name"`
}

// EventDayOption is one entry of the board's day strip.
type EventDayOption struct {
	Value      string    `json:"value"`
	Label      string    `json:"label"`
	Count      int       `json:"count"`
	DayKey     string    `json:"day_key"`
	FirstStart time.Time `json:"first_start"`
}

// BoardSnapshot is the full read model served to displays and the console.
type BoardSnapshot struct {
	RoomID          int64            `json:"room_id"`
	RoomNumber      string           `json:"room_number"`
	RoomDescription string           `json:"room_description,omitempty"`
	VisibleEvents   []BoardEvent     `json:"visible_events"`
	NoEvents        bool             `json:"no_events"`
	CurrentMC       *BoardMC         `json:"current_mc,omitempty"`
	NextMC          *BoardMC         `json:"next_mc,omitempty"`
	ActiveEventID   int64            `json:"active_event_id,omitempty"`
	CurrentProfile  *Profile         `json:"current_profile,omitempty"`
	Options         RotationOptions  `json:"options"`
	Days            []EventDayOption `json:"days,omitempty"`
	FetchedAt       time.Time        `json:"fetched_at"`
}
