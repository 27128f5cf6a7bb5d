package models

import "time"

// TeacherAssignment records how many parallel groups of a subject a teacher
// covers.
type TeacherAssignment struct {
	ID         string    `db:"id" json:"id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	GroupCount int       `db:"group_count" json:"group_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
