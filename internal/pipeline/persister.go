package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapetl/pkg/adapter"
	"github.com/leapstack-labs/leapetl/pkg/dataset"
)

// Persister writes the transformed dataset into the target table, replacing
// any previous contents.
type Persister struct {
	cfg    Config
	logger *slog.Logger
}

// NewPersister creates a Persister. If logger is nil, a discard logger is used.
func NewPersister(cfg Config, logger *slog.Logger) *Persister {
	return &Persister{cfg: cfg, logger: discardIfNil(logger)}
}

// Persist runs the stage. The adapter package for the target type must be
// registered (blank-imported) by the caller.
func (p *Persister) Persist(ctx context.Context) (res *StageResult, err error) {
	if err := requireInput(StagePersist, p.cfg.TransformedPath); err != nil {
		return nil, err
	}

	ds, err := dataset.ReadFile(p.cfg.TransformedPath, dataset.Normalized)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	target := p.cfg.Target
	if target.IsFileBased() && target.Database != "" && target.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(target.Database), 0o750); err != nil {
			return nil, fmt.Errorf("persist: failed to create database directory: %w", err)
		}
	}

	db, err := adapter.NewAdapter(target.AdapterConfig(), p.logger)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	if err := db.Connect(ctx, target.AdapterConfig()); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("persist: failed to close connection: %w", cerr)
		}
	}()

	if err := db.ReplaceTable(ctx, p.cfg.Table, ds); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	p.logger.Info("replaced table",
		slog.String("target", target.Type),
		slog.String("table", p.cfg.Table),
		slog.Int("rows", ds.Len()),
	)

	return &StageResult{
		Stage:   StagePersist,
		Input:   p.cfg.TransformedPath,
		Output:  p.cfg.Table,
		RowsIn:  ds.Len(),
		RowsOut: ds.Len(),
		Dialect: dataset.Normalized,
	}, nil
}
