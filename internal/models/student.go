package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Student represents a learner. SubjectIDs carries the serialized enrollment
// list exactly as stored; the repository expands it into the per-subject
// student sets the engine consumes.
type Student struct {
	ID         string         `db:"id" json:"id"`
	FullName   string         `db:"full_name" json:"full_name"`
	SubjectIDs types.JSONText `db:"subject_ids" json:"subject_ids"`
	Active     bool           `db:"active" json:"active"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// Enrollment maps a subject ID to the ordered IDs of its enrolled students.
type Enrollment map[string][]string
