package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListAll returns every subject ordered by ID.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name, group_number, hours_per_week, max_per_day, group_size_cap, min_per_day, parallel, created_at, updated_at
		FROM subjects ORDER BY id`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, group_number, hours_per_week, max_per_day, group_size_cap, min_per_day, parallel, created_at, updated_at
		FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
