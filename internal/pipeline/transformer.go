package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapetl/pkg/dataset"
)

// Transformer renames columns and truncates the loaded dataset.
type Transformer struct {
	cfg    Config
	logger *slog.Logger
}

// NewTransformer creates a Transformer. If logger is nil, a discard logger is used.
func NewTransformer(cfg Config, logger *slog.Logger) *Transformer {
	return &Transformer{cfg: cfg, logger: discardIfNil(logger)}
}

// Transform runs the stage.
func (t *Transformer) Transform(_ context.Context) (*StageResult, error) {
	if err := requireInput(StageTransform, t.cfg.LoadedPath); err != nil {
		return nil, err
	}

	ds, err := dataset.ReadFile(t.cfg.LoadedPath, dataset.Normalized)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	rowsIn := ds.Len()

	out, err := t.Apply(ds)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	if err := dataset.WriteFile(t.cfg.TransformedPath, out, dataset.Normalized); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	logSample(t.logger, StageTransform, out, t.cfg.SampleRows)

	return &StageResult{
		Stage:   StageTransform,
		Input:   t.cfg.LoadedPath,
		Output:  t.cfg.TransformedPath,
		RowsIn:  rowsIn,
		RowsOut: out.Len(),
		Dialect: dataset.Normalized,
	}, nil
}

// Apply renames columns in order, then keeps the first RowLimit rows.
// Renames of absent columns are skipped. ds is modified in place.
func (t *Transformer) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	for _, r := range t.cfg.Renames {
		renamed, err := ds.RenameColumn(r.From, r.To)
		if err != nil {
			return nil, err
		}
		if !renamed {
			t.logger.Debug("rename source column absent", slog.String("column", r.From))
			continue
		}
		t.logger.Debug("renamed column", slog.String("from", r.From), slog.String("to", r.To))
	}

	if t.cfg.RowLimit <= 0 {
		return ds, nil
	}
	return ds.Head(t.cfg.RowLimit), nil
}
