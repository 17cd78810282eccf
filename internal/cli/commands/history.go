package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapetl/internal/cli/output"
	"github.com/leapstack-labs/leapetl/internal/state"
	"github.com/leapstack-labs/leapetl/pkg/core"
)

// errHistoryDisabled is returned when history is requested with no state path.
var errHistoryDisabled = errors.New("run history is disabled (state_path is empty)")

// historyEntry pairs a run with its steps for rendering.
type historyEntry struct {
	*core.Run
	Steps []*core.StepRun `json:"steps"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs, newest first",
		Example: `  leapetl history
  leapetl history --limit 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cc, err := NewCommandContextWithoutPipeline(cmd)
	if err != nil {
		return err
	}
	if cc.Cfg.StatePath == "" {
		return errHistoryDisabled
	}

	entries := []historyEntry{}
	if _, err := os.Stat(cc.Cfg.StatePath); err == nil {
		entries, err = loadHistory(cc.Cfg.StatePath, cc, limit)
		if err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read run history: %w", err)
	}

	return renderHistory(cc.Renderer, entries)
}

func loadHistory(path string, cc *CommandContext, limit int) ([]historyEntry, error) {
	store := state.NewSQLiteStore(cc.Logger)
	if err := store.OpenAndMigrate(path); err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	entries := make([]historyEntry, 0, len(runs))
	for _, run := range runs {
		steps, err := store.GetStepRuns(run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get steps for run %s: %w", run.ID, err)
		}
		entries = append(entries, historyEntry{Run: run, Steps: steps})
	}
	return entries, nil
}

func renderHistory(r *output.Renderer, entries []historyEntry) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(entries)
	}

	r.Header(2, "Run history")
	if len(entries) == 0 {
		r.Muted("No runs recorded yet.")
		return nil
	}

	header := []string{"Run", "Command", "Status", "Started", "Duration", "Steps", "Error"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			shortID(e.ID),
			e.Pipeline,
			string(e.Status),
			e.StartedAt.Local().Format(time.DateTime),
			runDuration(e.Run),
			stepSummary(e.Steps),
			e.Error,
		})
	}
	r.Table(header, rows)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run *core.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}

func stepSummary(steps []*core.StepRun) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = fmt.Sprintf("%s:%s", s.Step, s.Status)
		if s.Status == core.StepStatusSuccess {
			parts[i] += fmt.Sprintf("(%d)", s.RowsOut)
		}
	}
	return strings.Join(parts, " ")
}
