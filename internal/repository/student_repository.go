package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

// StudentRepository manages persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListActive returns all active students ordered by ID.
func (r *StudentRepository) ListActive(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, full_name, subject_ids, active, created_at, updated_at
		FROM students WHERE active = true ORDER BY id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// Enrollment expands the serialized per-student subject lists into a
// subject-to-students map. A row whose subject_ids column does not parse
// fails the whole load; the engine must never run on partial enrollment.
func (r *StudentRepository) Enrollment(ctx context.Context) (models.Enrollment, error) {
	students, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	enrollment := make(models.Enrollment)
	for _, student := range students {
		var subjectIDs []string
		if len(student.SubjectIDs) > 0 {
			if err := json.Unmarshal(student.SubjectIDs, &subjectIDs); err != nil {
				return nil, fmt.Errorf("student %s: malformed subject_ids: %w", student.ID, err)
			}
		}
		for _, subjectID := range subjectIDs {
			enrollment[subjectID] = append(enrollment[subjectID], student.ID)
		}
	}

	return enrollment, nil
}
