package models

import "time"

// Subject represents an academic subject together with its weekly demand.
// GroupNumber is informational; the effective group count comes from the
// teacher assignment multiplicities. MinPerDay is reserved for future use.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	GroupNumber  int       `db:"group_number" json:"group_number"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	MaxPerDay    int       `db:"max_per_day" json:"max_per_day"`
	GroupSizeCap int       `db:"group_size_cap" json:"group_size_cap"`
	MinPerDay    int       `db:"min_per_day" json:"min_per_day"`
	Parallel     bool      `db:"parallel" json:"parallel"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
