package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapetl/internal/testutil"
	"github.com/leapstack-labs/leapetl/pkg/adapter"
	"github.com/leapstack-labs/leapetl/pkg/adapters/duckdb"
	"github.com/leapstack-labs/leapetl/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leapetl/pkg/core"
	"github.com/leapstack-labs/leapetl/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersister_Persist(t *testing.T) {
	cfg := testConfig(t)
	writeUTF8(t, cfg.TransformedPath, "Categoria,Valor\nA,10\nB,20\n")

	res, err := NewPersister(cfg, testutil.NewTestLogger(t)).Persist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsOut)
	assert.Equal(t, cfg.Table, res.Output)

	meta := tableMetadata(t, cfg)
	assert.Equal(t, []string{"Categoria", "Valor"}, meta.ColumnNames())
	assert.Equal(t, "TEXT", meta.Columns[0].Type)
	assert.Equal(t, "INTEGER", meta.Columns[1].Type)
	assert.Equal(t, int64(2), meta.RowCount)
}

func TestPersister_ReplacesTableAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	persister := NewPersister(cfg, nil)

	writeUTF8(t, cfg.TransformedPath, "Categoria,Valor\nA,10\nB,20\n")
	_, err := persister.Persist(context.Background())
	require.NoError(t, err)
	_, err = persister.Persist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), tableMetadata(t, cfg).RowCount, "second run must replace, not append")

	writeUTF8(t, cfg.TransformedPath, "Outra\nx\n")
	_, err = persister.Persist(context.Background())
	require.NoError(t, err)

	meta := tableMetadata(t, cfg)
	assert.Equal(t, []string{"Outra"}, meta.ColumnNames())
	assert.Equal(t, int64(1), meta.RowCount)
}

func TestPersister_CreatesDatabaseDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.Database = filepath.Join(t.TempDir(), "a", "b", "meu_banco.db")
	writeUTF8(t, cfg.TransformedPath, "Categoria,Valor\nA,10\n")

	_, err := NewPersister(cfg, nil).Persist(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, cfg.Target.Database)
}

func TestPersister_DuckDBTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target = core.TargetConfig{Type: "duckdb", Database: filepath.Join(t.TempDir(), "meu_banco.duckdb")}
	writeUTF8(t, cfg.TransformedPath, "Categoria,Valor\nA,10.5\nB,20\n")

	_, err := NewPersister(cfg, nil).Persist(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	db := duckdb.New(nil)
	require.NoError(t, db.Connect(ctx, cfg.Target.AdapterConfig()))
	defer func() { _ = db.Close() }()

	meta, err := db.GetTableMetadata(ctx, cfg.Table)
	require.NoError(t, err)
	assert.Equal(t, "DOUBLE", meta.Columns[1].Type)
	assert.Equal(t, int64(2), meta.RowCount)
}

func TestPersister_MissingInput(t *testing.T) {
	cfg := testConfig(t)

	_, err := NewPersister(cfg, nil).Persist(context.Background())
	require.ErrorIs(t, err, ErrMissingInput)

	var missing *MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, StagePersist, missing.Stage)
	assert.NoFileExists(t, cfg.Target.Database)
}

func TestPersister_UnknownTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.Type = "oracle"
	writeUTF8(t, cfg.TransformedPath, "Categoria\nA\n")

	_, err := NewPersister(cfg, nil).Persist(context.Background())
	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
}

// failingReplaceAdapter is a sqlite adapter whose ReplaceTable always fails.
type failingReplaceAdapter struct {
	*sqlite.Adapter
	closed bool
}

func (a *failingReplaceAdapter) ReplaceTable(context.Context, string, *dataset.Dataset) error {
	return errors.New("disk full")
}

func (a *failingReplaceAdapter) Close() error {
	a.closed = true
	return a.Adapter.Close()
}

func TestPersister_ClosesConnectionOnWriteFailure(t *testing.T) {
	var created *failingReplaceAdapter
	adapter.Register("sqlite_failing_replace", func(logger *slog.Logger) adapter.Adapter {
		created = &failingReplaceAdapter{Adapter: sqlite.New(logger)}
		return created
	})

	cfg := testConfig(t)
	cfg.Target.Type = "sqlite_failing_replace"
	writeUTF8(t, cfg.TransformedPath, "Categoria,Valor\nA,10\n")

	_, err := NewPersister(cfg, nil).Persist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, created)
	assert.True(t, created.closed, "connection must be closed after a failed write")
}
