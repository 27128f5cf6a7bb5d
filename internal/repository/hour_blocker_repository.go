package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

// HourBlockerRepository manages the globally blocked timetable cells.
type HourBlockerRepository struct {
	db *sqlx.DB
}

// NewHourBlockerRepository constructs an HourBlockerRepository.
func NewHourBlockerRepository(db *sqlx.DB) *HourBlockerRepository {
	return &HourBlockerRepository{db: db}
}

// Load returns the blocker for a days x periods grid. Rows outside the grid
// are dropped by the blocker itself.
func (r *HourBlockerRepository) Load(ctx context.Context, days, periods int) (*models.HourBlocker, error) {
	const query = `SELECT day, period, blocked FROM hour_blockers ORDER BY day, period`
	var cells []models.HourBlockerCell
	if err := r.db.SelectContext(ctx, &cells, query); err != nil {
		return nil, fmt.Errorf("load hour blockers: %w", err)
	}

	blocker := models.NewHourBlocker(days, periods)
	for _, cell := range cells {
		if cell.Blocked {
			blocker.Block(cell.Day, cell.Period)
		}
	}
	return blocker, nil
}
