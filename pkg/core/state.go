package core

import "time"

// RunStatus represents the status of a pipeline run.
type RunStatus string

// Run status values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepStatus represents the status of a single step within a run.
type StepStatus string

// Step status values.
const (
	StepStatusRunning StepStatus = "running"
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
	StepStatusSkipped StepStatus = "skipped"
)

// Run represents one invocation of the pipeline, whole or partial.
type Run struct {
	ID          string     `json:"id"`
	Pipeline    string     `json:"pipeline"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// StepRun represents the execution of one step within a run.
type StepRun struct {
	ID          string     `json:"id"`
	RunID       string     `json:"run_id"`
	Step        string     `json:"step"`
	Status      StepStatus `json:"status"`
	RowsIn      int64      `json:"rows_in"`
	RowsOut     int64      `json:"rows_out"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Store defines the interface for run-history operations.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(pipeline string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	StartStep(runID, step string) (*StepRun, error)
	CompleteStep(id string, status StepStatus, rowsIn, rowsOut int64, errMsg string) error
	GetStepRuns(runID string) ([]*StepRun, error)
}
