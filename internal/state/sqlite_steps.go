package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapetl/pkg/core"
)

// ErrStepNotFound is returned when a step run ID does not exist.
var ErrStepNotFound = errors.New("step run not found")

// StartStep records the start of a step within a run.
func (s *SQLiteStore) StartStep(runID, step string) (*core.StepRun, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	sr := &core.StepRun{
		ID:        generateID(),
		RunID:     runID,
		Step:      step,
		Status:    core.StepStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("starting step", slog.String("run_id", runID), slog.String("step", step))

	_, err := s.db.Exec(
		`INSERT INTO step_runs (id, run_id, step, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		sr.ID, sr.RunID, sr.Step, string(sr.Status), formatTime(sr.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start step %s: %w", step, err)
	}
	return sr, nil
}

// CompleteStep records the outcome of a step.
func (s *SQLiteStore) CompleteStep(id string, status core.StepStatus, rowsIn, rowsOut int64, errMsg string) error {
	if s.db == nil {
		return errNotOpened
	}

	res, err := s.db.Exec(
		`UPDATE step_runs SET status = ?, rows_in = ?, rows_out = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), rowsIn, rowsOut, formatTime(time.Now()), nullString(errMsg), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete step: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	return nil
}

// GetStepRuns returns the steps of a run in execution order.
func (s *SQLiteStore) GetStepRuns(runID string) ([]*core.StepRun, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, step, status, rows_in, rows_out, started_at, completed_at, error
		 FROM step_runs WHERE run_id = ? ORDER BY started_at, rowid`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get step runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []*core.StepRun
	for rows.Next() {
		sr, err := scanStepRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step run: %w", err)
		}
		steps = append(steps, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get step runs: %w", err)
	}
	return steps, nil
}

func scanStepRun(sc scanner) (*core.StepRun, error) {
	sr := &core.StepRun{}
	var status, startedAt string
	var completedAt, errMsg sql.NullString

	if err := sc.Scan(&sr.ID, &sr.RunID, &sr.Step, &status, &sr.RowsIn, &sr.RowsOut,
		&startedAt, &completedAt, &errMsg); err != nil {
		return nil, err
	}

	var err error
	sr.Status = core.StepStatus(status)
	if sr.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if sr.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	sr.Error = errMsg.String
	return sr, nil
}
