package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher represents an instructor record. Availability holds one flag per
// weekday of the configured grid; days beyond the array's length count as
// unavailable. Immutable once loaded for a solving run.
type Teacher struct {
	ID            string       `db:"id" json:"id"`
	FullName      string       `db:"full_name" json:"full_name"`
	Email         *string      `db:"email" json:"email,omitempty"`
	Availability  pq.BoolArray `db:"availability" json:"availability"`
	MaxLoadPerDay int          `db:"max_load_per_day" json:"max_load_per_day"`
	Active        bool         `db:"active" json:"active"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// AvailableOn reports whether the teacher can teach on the given day index.
func (t Teacher) AvailableOn(day int) bool {
	return day >= 0 && day < len(t.Availability) && t.Availability[day]
}

// AvailableDays counts the days the teacher is available on within the grid.
func (t Teacher) AvailableDays(gridDays int) int {
	count := 0
	for day := 0; day < gridDays; day++ {
		if t.AvailableOn(day) {
			count++
		}
	}
	return count
}
