package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapetl/internal/cli/output"
	"github.com/leapstack-labs/leapetl/pkg/adapter"
	"github.com/leapstack-labs/leapetl/pkg/core"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Limit  int
	Format string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the target table's columns and first rows",
		Long: `Connect to the configured target and show the persisted table: its
columns with their database types, the row count and the first rows.`,
		Example: `  leapetl inspect
  leapetl inspect --limit 3 --format csv
  leapetl inspect --target-type duckdb --database data/etl.duckdb -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Maximum number of rows to show")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Row format: table, json, csv, md (default follows --output)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions) (err error) {
	cc, err := NewCommandContextWithoutPipeline(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	target := cc.Cfg.Target

	if target.IsFileBased() && target.Database != ":memory:" {
		if _, err := os.Stat(target.Database); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database not found: %s\nHint: run `leapetl persist` first", target.Database)
		}
	}

	db, err := adapter.NewAdapter(target.AdapterConfig(), cc.Logger)
	if err != nil {
		return err
	}
	if err := db.Connect(ctx, target.AdapterConfig()); err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close connection: %w", cerr)
		}
	}()

	meta, err := db.GetTableMetadata(ctx, cc.Cfg.Table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", adapter.QuoteQualified(cc.Cfg.Table))
	if opts.Limit >= 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	rows, err := db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	cols, results, err := collectRows(rows)
	if err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = formatForMode(cc.Renderer.EffectiveMode())
	}
	return renderInspect(cc.Renderer, meta, cols, results, format)
}

func formatForMode(mode output.OutputMode) string {
	switch mode {
	case output.ModeJSON:
		return "json"
	case output.ModeMarkdown:
		return "md"
	default:
		return "table"
	}
}

// inspectReport is the JSON form of the inspect output.
type inspectReport struct {
	Table    string           `json:"table"`
	RowCount int64            `json:"row_count"`
	Columns  []inspectColumn  `json:"columns"`
	Rows     []map[string]any `json:"rows"`
}

type inspectColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

func renderInspect(r *output.Renderer, meta *core.TableMetadata, cols []string, results []map[string]any, format string) error {
	w := r.Writer()
	switch format {
	case "json":
		rep := inspectReport{Table: meta.Name, RowCount: meta.RowCount, Rows: results}
		if rep.Rows == nil {
			rep.Rows = []map[string]any{}
		}
		for _, c := range meta.Columns {
			rep.Columns = append(rep.Columns, inspectColumn{Name: c.Name, Type: c.Type, Nullable: c.Nullable})
		}
		return r.JSON(rep)
	case "csv":
		return renderCSV(w, cols, results)
	case "md", "markdown", "table":
	default:
		return fmt.Errorf("invalid format %q (expected table, json, csv or md)", format)
	}

	r.Header(2, fmt.Sprintf("%s (%d rows)", meta.Name, meta.RowCount))
	schema := make([][]string, len(meta.Columns))
	for i, c := range meta.Columns {
		schema[i] = []string{c.Name, c.Type}
	}
	r.Table([]string{"Column", "Type"}, schema)
	r.Println()

	if format == "table" {
		return renderTable(w, cols, results)
	}
	return renderMarkdown(w, cols, results)
}
