package models

import "time"

// Room represents a physical hall where events and MC sessions take place.
type Room struct {
	ID         int64     `db:"id" json:"id"`
	RoomNumber string    `db:"room_number" json:"room_number"`
	Static     bool      `db:"static" json:"static"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// RoomDescription is a time-bound or timeless description shown on the board.
type RoomDescription struct {
	ID          int64      `db:"id" json:"id"`
	RoomID      int64      `db:"room_id" json:"room_id"`
	StartTime   *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime     *time.Time `db:"end_time" json:"end_time,omitempty"`
	Description string     `db:"description" json:"description"`
}

// ActiveAt reports whether the description applies at the given instant.
// Descriptions without bounds are timeless and always apply.
func (d RoomDescription) ActiveAt(now time.Time) bool {
	if d.StartTime != nil && now.Before(*d.StartTime) {
		return false
	}
	if d.EndTime != nil && now.After(*d.EndTime) {
		return false
	}
	return true
}
