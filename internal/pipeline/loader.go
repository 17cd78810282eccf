package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapetl/pkg/dataset"
)

// Loader reads the raw input file with the first candidate dialect that
// parses it and writes a UTF-8 comma-delimited copy.
type Loader struct {
	cfg    Config
	logger *slog.Logger
}

// NewLoader creates a Loader. If logger is nil, a discard logger is used.
func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	return &Loader{cfg: cfg, logger: discardIfNil(logger)}
}

// Load runs the stage.
func (l *Loader) Load(ctx context.Context) (*StageResult, error) {
	ds, dialect, err := l.Detect(ctx)
	if err != nil {
		return nil, err
	}

	l.logger.Info("parsed input",
		slog.String("path", l.cfg.InputPath),
		slog.String("dialect", dialect.String()),
		slog.Int("rows", ds.Len()),
	)

	if err := dataset.WriteFile(l.cfg.LoadedPath, ds, dataset.Normalized); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	logSample(l.logger, StageLoad, ds, l.cfg.SampleRows)

	return &StageResult{
		Stage:   StageLoad,
		Input:   l.cfg.InputPath,
		Output:  l.cfg.LoadedPath,
		RowsIn:  ds.Len(),
		RowsOut: ds.Len(),
		Dialect: dialect,
	}, nil
}

// Detect reads the input file and returns it parsed with the first candidate
// dialect that accepts it. Nothing is written.
func (l *Loader) Detect(_ context.Context) (*dataset.Dataset, dataset.Dialect, error) {
	if err := requireInput(StageLoad, l.cfg.InputPath); err != nil {
		return nil, dataset.Dialect{}, err
	}

	raw, err := os.ReadFile(l.cfg.InputPath)
	if err != nil {
		return nil, dataset.Dialect{}, fmt.Errorf("load: failed to read %s: %w", l.cfg.InputPath, err)
	}

	ds, dialect, err := l.parse(raw)
	if err != nil {
		return nil, dialect, fmt.Errorf("load: %w", err)
	}
	return ds, dialect, nil
}

// parse tries each candidate dialect in order. A candidate other than the
// last is abandoned on a read error or a header that did not split into
// more than one column; the last candidate's error is returned as is.
func (l *Loader) parse(raw []byte) (*dataset.Dataset, dataset.Dialect, error) {
	candidates := l.cfg.Dialects
	if len(candidates) == 0 {
		return nil, dataset.Dialect{}, errors.New("no read dialects configured")
	}

	for i, d := range candidates[:len(candidates)-1] {
		ds, err := dataset.Read(bytes.NewReader(raw), d)
		if err == nil && ds.Width() < 2 {
			err = fmt.Errorf("%w with delimiter %s", errSingleColumn, d)
		}
		if err == nil {
			return ds, d, nil
		}

		l.logger.Warn(ParseFallbackWarning,
			slog.String("path", l.cfg.InputPath),
			slog.String("dialect", d.String()),
			slog.String("next", candidates[i+1].String()),
			slog.String("error", err.Error()),
		)
	}

	last := candidates[len(candidates)-1]
	ds, err := dataset.Read(bytes.NewReader(raw), last)
	if err != nil {
		return nil, last, err
	}
	return ds, last, nil
}
