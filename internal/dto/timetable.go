package dto

import "github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"

// GenerateTimetableRequest carries per-run overrides. Every field is
// optional; zero values fall back to the configured defaults.
type GenerateTimetableRequest struct {
	Strategy        string `json:"strategy" validate:"omitempty,oneof=optimizer backtracking competing"`
	MaxIterations   int    `json:"max_iterations" validate:"omitempty,min=1,max=1000000"`
	TimeLimitMs     int    `json:"time_limit_ms" validate:"omitempty,min=100,max=600000"`
	StagnationLimit int    `json:"stagnation_limit" validate:"omitempty,min=1,max=100000"`
	Workers         int    `json:"workers" validate:"omitempty,min=1,max=16"`
}

// GenerateTimetableResponse returns the completed run.
type GenerateTimetableResponse struct {
	Run *models.TimetableRun `json:"run"`
}

// EnqueueTimetableResponse acknowledges an async run.
type EnqueueTimetableResponse struct {
	RunID  string                    `json:"run_id"`
	Status models.TimetableRunStatus `json:"status"`
}
