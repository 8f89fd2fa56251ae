package models

import (
	"strings"
	"time"
)

// CallerCuer represents a caller or cuer on the roster.
type CallerCuer struct {
	ID         int64     `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Suffix     *string   `db:"suffix" json:"suffix,omitempty"`
	MC         bool      `db:"mc" json:"mc"`
	DanceTypes string    `db:"dance_types" json:"dance_types"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders "First Last, Suffix" for board labels.
func (c CallerCuer) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if c.Suffix != nil && *c.Suffix != "" {
		name += ", " + *c.Suffix
	}
	return name
}

// NormalizeCallerIDs drops nil-like zero values and duplicates while
// preserving the original ordering. Lock selection depends on that order.
func NormalizeCallerIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	ordered := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	return ordered
}
