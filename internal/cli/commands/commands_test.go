package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapetl/internal/cli/config"
	"github.com/leapstack-labs/leapetl/internal/cli/output"
	"github.com/leapstack-labs/leapetl/internal/cli/testutil"
	"github.com/leapstack-labs/leapetl/internal/pipeline"
	"github.com/leapstack-labs/leapetl/pkg/core"
	"github.com/leapstack-labs/leapetl/pkg/dataset"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leapetl/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapetl/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapetl/pkg/adapters/sqlite"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewRunCommand(), "run", nil},
		{NewLoadCommand(), "load", nil},
		{NewTransformCommand(), "transform", nil},
		{NewPersistCommand(), "persist", nil},
		{NewHistoryCommand(), "history", []string{"limit"}},
		{NewInspectCommand(), "inspect", []string{"limit", "format"}},
		{NewConfigCommand(), "config", nil},
		{NewDoctorCommand(), "doctor", nil},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, f := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(f), "flag %q should exist", f)
			}
		})
	}
}

func TestNewCommandContext_RequiresConfig(t *testing.T) {
	cmd := NewRunCommand()
	cmd.SetContext(context.Background())

	_, _, err := NewCommandContext(cmd)
	require.ErrorIs(t, err, errNoConfig)
}

func TestNewCommandContext_HistoryUnavailable(t *testing.T) {
	dir := t.TempDir()
	// A directory where the state file should be makes opening fail.
	cfg := &config.Config{
		Input:       dir + "/in.csv",
		Loaded:      dir + "/l.csv",
		Transformed: dir + "/t.csv",
		Delimiters:  []string{";"},
		Encoding:    "latin-1",
		Table:       "t",
		StatePath:   dir,
		Target:      &config.TargetConfig{Type: "sqlite", Database: dir + "/x.db"},
	}
	cmd := NewRunCommand()
	cmd.SetContext(config.WithConfig(context.Background(), cfg))

	cc, cleanup, err := NewCommandContext(cmd)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, cc.Store)
	assert.NotNil(t, cc.Pipeline)
}

func testResult() (*pipeline.Result, error) {
	failure := errors.New("persist: boom")
	return &pipeline.Result{
		RunID: "0123456789abcdef",
		Steps: []pipeline.StepOutcome{
			{
				Name:     "load",
				Status:   core.StepStatusSuccess,
				Duration: 1500 * time.Millisecond,
				Result: &pipeline.StageResult{
					Stage: "load", Input: "in.csv", Output: "l.csv", RowsIn: 3, RowsOut: 3,
					Dialect: dataset.Dialect{Delimiter: ';', Encoding: "latin-1"},
				},
			},
			{Name: "transform", Status: core.StepStatusFailed, Err: failure},
			{Name: "persist", Status: core.StepStatusSkipped},
		},
	}, failure
}

func TestNewRunReport(t *testing.T) {
	result, err := testResult()
	rep := newRunReport("run", result, err)

	assert.Equal(t, "failed", rep.Status)
	assert.Equal(t, "persist: boom", rep.Error)
	assert.Equal(t, "0123456789abcdef", rep.RunID)
	require.Len(t, rep.Steps, 3)
	assert.Equal(t, stepReport{
		Step: "load", Status: "success", Input: "in.csv", Output: "l.csv",
		Dialect: `";" latin-1`, RowsIn: 3, RowsOut: 3, DurationMS: 1500,
	}, rep.Steps[0])
	assert.Equal(t, "persist: boom", rep.Steps[1].Error)
	assert.Equal(t, "skipped", rep.Steps[2].Status)

	empty := newRunReport("load", nil, errors.New("x"))
	assert.Empty(t, empty.Steps)
	assert.Equal(t, "failed", empty.Status)
}

func TestRenderRunReport(t *testing.T) {
	result, err := testResult()
	rep := newRunReport("run", result, err)

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		require.NoError(t, renderRunReport(tr.Renderer, rep))
		out := tr.Output()
		assert.Contains(t, out, "## leapetl run")
		assert.Contains(t, out, `- ✓ **load** success: 3 → 3 rows, l.csv (read as ";" latin-1) in 1.5s`)
		assert.Contains(t, out, "- ✗ **transform** failed: persist: boom")
		assert.Contains(t, out, "- - **persist** skipped\n")
		assert.Contains(t, out, "run 0123456789abcdef")
		testutil.AssertValidMarkdown(t, out)
	})

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()
		require.NoError(t, renderRunReport(tr.Renderer, rep))
		assert.Contains(t, tr.Output(), `"status": "failed"`)
		testutil.AssertNoANSI(t, tr.Output())
	})
}

func TestRenderHistory(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	done := started.Add(250 * time.Millisecond)
	entries := []historyEntry{{
		Run: &core.Run{ID: "abcdef0123456789", Pipeline: "run", Status: core.RunStatusCompleted, StartedAt: started, CompletedAt: &done},
		Steps: []*core.StepRun{
			{Step: "load", Status: core.StepStatusSuccess, RowsOut: 3},
			{Step: "transform", Status: core.StepStatusFailed},
		},
	}}

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, renderHistory(tr.Renderer, entries))
	out := tr.Output()
	assert.Contains(t, out, "## Run history")
	assert.Contains(t, out, "abcdef01")
	assert.Contains(t, out, "250ms")
	assert.Contains(t, out, "load:success(3) transform:failed")

	tr = testutil.NewTestRendererMarkdown()
	require.NoError(t, renderHistory(tr.Renderer, nil))
	assert.Contains(t, tr.Output(), "No runs recorded yet.")
}

func TestRenderInspect(t *testing.T) {
	meta := &core.TableMetadata{
		Name:     "transacoes",
		RowCount: 2,
		Columns: []core.Column{
			{Name: "Categoria", Type: "TEXT", Nullable: true},
			{Name: "Valor", Type: "REAL", Nullable: true},
		},
	}
	cols := []string{"Categoria", "Valor"}
	rows := []map[string]any{
		{"Categoria": "Crédito", "Valor": 100.0},
		{"Categoria": "a|b", "Valor": nil},
	}

	tests := []struct {
		name     string
		format   string
		contains []string
	}{
		{"markdown", "md", []string{"## transacoes (2 rows)", "| Categoria | Valor |", `| a\|b | NULL |`}},
		{"table", "table", []string{"Crédito", "(2 rows)", "┌"}},
		{"csv", "csv", []string{"Categoria,Valor\nCrédito,100\na|b,\n"}},
		{"json", "json", []string{`"table": "transacoes"`, `"type": "REAL"`, `"Valor": null`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testutil.NewTestRendererMarkdown()
			require.NoError(t, renderInspect(tr.Renderer, meta, cols, rows, tt.format))
			for _, want := range tt.contains {
				assert.Contains(t, tr.Output(), want)
			}
		})
	}

	tr := testutil.NewTestRendererMarkdown()
	err := renderInspect(tr.Renderer, meta, cols, rows, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFormatForMode(t *testing.T) {
	assert.Equal(t, "json", formatForMode(output.ModeJSON))
	assert.Equal(t, "md", formatForMode(output.ModeMarkdown))
	assert.Equal(t, "table", formatForMode(output.ModeText))
}
