package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapetl/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leapetl/pkg/core"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// testConfig returns the default configuration rooted in a temp directory.
func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.InputPath = filepath.Join(dir, "Tipo_de_transacao.csv")
	cfg.LoadedPath = filepath.Join(dir, "data", "dados_carregados.csv")
	cfg.TransformedPath = filepath.Join(dir, "data", "dados_transformados.csv")
	cfg.Target = core.TargetConfig{Type: "sqlite", Database: filepath.Join(dir, "data", "meu_banco.db")}
	return cfg
}

func writeLatin1(t *testing.T, path, content string) {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o600))
}

func writeUTF8(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// tableMetadata opens the sqlite target and describes table.
func tableMetadata(t *testing.T, cfg Config) *core.TableMetadata {
	t.Helper()
	ctx := context.Background()
	db := sqlite.New(nil)
	require.NoError(t, db.Connect(ctx, cfg.Target.AdapterConfig()))
	defer func() { _ = db.Close() }()

	meta, err := db.GetTableMetadata(ctx, cfg.Table)
	require.NoError(t, err)
	return meta
}
