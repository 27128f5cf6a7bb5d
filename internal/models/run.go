package models

import "time"

// TimetableRunStatus tracks a solving run through its lifecycle.
type TimetableRunStatus string

const (
	RunStatusPending  TimetableRunStatus = "pending"
	RunStatusRunning  TimetableRunStatus = "running"
	RunStatusFinished TimetableRunStatus = "finished"
	RunStatusFailed   TimetableRunStatus = "failed"
)

// Placement is one scheduled session in a finished run.
type Placement struct {
	SessionID   string   `json:"session_id"`
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name"`
	TeacherID   string   `json:"teacher_id"`
	Group       int      `json:"group"`
	Day         int      `json:"day"`
	Period      int      `json:"period"`
	StudentIDs  []string `json:"student_ids,omitempty"`
}

// RunStats carries the counters of one solving run.
type RunStats struct {
	Iterations int           `json:"iterations"`
	Moves      int           `json:"moves"`
	Accepted   int           `json:"accepted"`
	Restarts   int           `json:"restarts"`
	Elapsed    time.Duration `json:"elapsed"`
}

// TimetableRun is one solving run and, once finished, its best schedule.
type TimetableRun struct {
	ID          string             `json:"id"`
	Status      TimetableRunStatus `json:"status"`
	Strategy    string             `json:"strategy"`
	Penalty     int                `json:"penalty"`
	Unplaced    int                `json:"unplaced"`
	Placements  []Placement        `json:"placements,omitempty"`
	Issues      []string           `json:"issues,omitempty"`
	Stats       RunStats           `json:"stats"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}
