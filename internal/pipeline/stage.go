package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapetl/pkg/dataset"
)

// Stage names.
const (
	StageLoad      = "load"
	StageTransform = "transform"
	StagePersist   = "persist"
)

// StageResult describes what a stage read and wrote.
type StageResult struct {
	Stage   string
	Input   string
	Output  string
	RowsIn  int
	RowsOut int
	// Dialect is the dialect the input was read with.
	Dialect dataset.Dialect
}

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// requireInput returns a *MissingInputError if path does not exist.
func requireInput(stage, path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &MissingInputError{Stage: stage, Path: path}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return nil
}

func logSample(logger *slog.Logger, stage string, ds *dataset.Dataset, n int) {
	if n <= 0 || !logger.Enabled(context.Background(), slog.LevelInfo) {
		return
	}
	logger.Info("dataset sample",
		slog.String("stage", stage),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", ds.Width()),
		slog.String("sample", "\n"+ds.Sample(n)),
	)
}
