// Package state records pipeline run history in a SQLite database.
// It tracks runs and the steps executed within each run.
//
// Core types are defined in pkg/core. This package re-exports them via type
// aliases so callers can depend on state alone.
package state

import (
	"github.com/leapstack-labs/leapetl/pkg/core"
)

type (
	// Store is an alias for core.Store.
	Store = core.Store

	// RunStatus is an alias for core.RunStatus.
	RunStatus = core.RunStatus

	// Run is an alias for core.Run.
	Run = core.Run

	// StepStatus is an alias for core.StepStatus.
	StepStatus = core.StepStatus

	// StepRun is an alias for core.StepRun.
	StepRun = core.StepRun
)

// Re-export status constants.
const (
	RunStatusRunning   = core.RunStatusRunning
	RunStatusCompleted = core.RunStatusCompleted
	RunStatusFailed    = core.RunStatusFailed

	StepStatusRunning = core.StepStatusRunning
	StepStatusSuccess = core.StepStatusSuccess
	StepStatusFailed  = core.StepStatusFailed
	StepStatusSkipped = core.StepStatusSkipped
)

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
