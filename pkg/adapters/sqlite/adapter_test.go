package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapetl/pkg/adapter"
	"github.com/leapstack-labs/leapetl/pkg/core"
	"github.com/leapstack-labs/leapetl/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, path string) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: path}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func transacoes() *dataset.Dataset {
	ds := dataset.New([]string{"Categoria", "Valor", "Taxa"})
	ds.Rows = [][]dataset.Cell{
		{dataset.Value("A"), dataset.Value("1"), dataset.Value("0.25")},
		{dataset.Value("B"), dataset.Value("2"), dataset.Null()},
		{dataset.Value("C"), dataset.Null(), dataset.Value("3")},
	}
	return ds
}

func TestAdapter_ReplaceTable(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, filepath.Join(t.TempDir(), "meu_banco.db"))

	require.NoError(t, adp.ReplaceTable(ctx, "transacoes", transacoes()))

	meta, err := adp.GetTableMetadata(ctx, "transacoes")
	require.NoError(t, err)
	assert.Equal(t, "main", meta.Schema)
	assert.Equal(t, "transacoes", meta.Name)
	assert.Equal(t, []string{"Categoria", "Valor", "Taxa"}, meta.ColumnNames())
	assert.Equal(t, []string{"TEXT", "INTEGER", "REAL"},
		[]string{meta.Columns[0].Type, meta.Columns[1].Type, meta.Columns[2].Type})
	assert.Equal(t, 1, meta.Columns[0].Position)
	assert.True(t, meta.Columns[1].Nullable)
	assert.Equal(t, int64(3), meta.RowCount)

	rows, err := adp.Query(ctx, `SELECT "Valor", typeof("Valor") FROM transacoes ORDER BY "Categoria"`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var types []string
	var nulls int
	for rows.Next() {
		var v *int64
		var typ string
		require.NoError(t, rows.Scan(&v, &typ))
		if v == nil {
			nulls++
		}
		types = append(types, typ)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"integer", "integer", "null"}, types)
	assert.Equal(t, 1, nulls)
}

func TestAdapter_ReplaceTableTwice(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "meu_banco.db")
	adp := connect(t, path)

	require.NoError(t, adp.ReplaceTable(ctx, "transacoes", transacoes()))
	require.NoError(t, adp.ReplaceTable(ctx, "transacoes", transacoes()))

	meta, err := adp.GetTableMetadata(ctx, "transacoes")
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.RowCount, "second replace must not append")
}

func TestAdapter_ReplaceTableKeepsOtherTables(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, ":memory:")

	require.NoError(t, adp.Exec(ctx, `CREATE TABLE outra (id INTEGER)`))
	require.NoError(t, adp.Exec(ctx, `INSERT INTO outra VALUES (1)`))
	require.NoError(t, adp.ReplaceTable(ctx, "transacoes", transacoes()))

	meta, err := adp.GetTableMetadata(ctx, "outra")
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.RowCount)
}

func TestAdapter_ReplaceTableHeaderOnly(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, ":memory:")

	require.NoError(t, adp.ReplaceTable(ctx, "vazia", dataset.New([]string{"Tipo", "Valor"})))

	meta, err := adp.GetTableMetadata(ctx, "vazia")
	require.NoError(t, err)
	assert.Equal(t, []string{"TEXT", "TEXT"}, []string{meta.Columns[0].Type, meta.Columns[1].Type})
	assert.Equal(t, int64(0), meta.RowCount)
}

func TestAdapter_GetTableMetadata_Missing(t *testing.T) {
	adp := connect(t, ":memory:")
	_, err := adp.GetTableMetadata(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.GetTableMetadata(ctx, "t")
	require.ErrorIs(t, err, adapter.ErrNotConnected)
	require.ErrorIs(t, adp.ReplaceTable(ctx, "t", transacoes()), adapter.ErrNotConnected)
	assert.NoError(t, adp.Close())
}

func TestAdapter_Registered(t *testing.T) {
	adp, err := adapter.NewAdapter(core.AdapterConfig{Type: "sqlite"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", adp.DialectName())
}
