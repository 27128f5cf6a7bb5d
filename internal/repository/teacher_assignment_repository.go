package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

// TeacherAssignmentRepository manages subject-to-teacher assignments.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs a TeacherAssignmentRepository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// ListAll returns every assignment ordered by subject then teacher, so
// repeated loads present groups in a stable order.
func (r *TeacherAssignmentRepository) ListAll(ctx context.Context) ([]models.TeacherAssignment, error) {
	const query = `SELECT id, subject_id, teacher_id, group_count, created_at
		FROM subject_teachers ORDER BY subject_id, teacher_id`
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}
