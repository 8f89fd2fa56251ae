package models

import (
	"strings"
	"time"
)

// Event is a scheduled session performed by one or more callers/cuers in a room.
// CallerIDs come from the event_callers junction table ordered by position; they
// are not a column on the events table.
type Event struct {
	ID         int64      `db:"id" json:"id"`
	RoomID     int64      `db:"room_id" json:"room_id"`
	Start      time.Time  `db:"start" json:"start"`
	End        *time.Time `db:"end" json:"end,omitempty"`
	DanceTypes string     `db:"dance_types" json:"dance_types"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`

	CallerIDs []int64 `db:"-" json:"caller_cuer_ids"`
}

// DanceTypeList splits the stored comma-separated dance types.
func (e Event) DanceTypeList() []string {
	if e.DanceTypes == "" {
		return nil
	}
	parts := strings.Split(e.DanceTypes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// MCAssignment is a master-of-ceremonies shift within a room.
type MCAssignment struct {
	ID           int64     `db:"id" json:"id"`
	RoomID       int64     `db:"room_id" json:"room_id"`
	CallerCuerID int64     `db:"caller_cuer_id" json:"caller_cuer_id"`
	Start        time.Time `db:"start" json:"start"`
	End          time.Time `db:"end" json:"end"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
