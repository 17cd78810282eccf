package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapetl/internal/cli/config"
	"github.com/leapstack-labs/leapetl/internal/cli/output"
	"github.com/leapstack-labs/leapetl/internal/pipeline"
	"github.com/leapstack-labs/leapetl/internal/state"
	"github.com/leapstack-labs/leapetl/pkg/adapter"
)

// Check statuses.
const (
	checkPass  = "pass"
	checkWarn  = "warn"
	checkError = "error"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration, input, target and run history",
		Long: `Check that a run would succeed without writing anything but the run
history schema.

The doctor command reports:
- which config file is in use
- whether the input exists and which dialect reads it
- whether every rename source exists in the input
- whether the target is reachable and the table exists
- whether the run history store opens

It exits with an error when any check fails.`,
		Example: `  leapetl doctor
  leapetl doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks   []HealthCheck `json:"checks"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command) error {
	cc, err := NewCommandContextWithoutPipeline(cmd)
	if err != nil {
		return err
	}

	out := diagnose(cmd.Context(), cc.Cfg, cc.Logger)

	var renderErr error
	switch cc.Renderer.EffectiveMode() {
	case output.ModeJSON:
		renderErr = cc.Renderer.JSON(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(cc.Renderer, out)
	default:
		renderDoctorText(cc.Renderer, out)
	}
	if renderErr != nil {
		return renderErr
	}
	if out.Errors > 0 {
		return fmt.Errorf("doctor found %d problem(s)", out.Errors)
	}
	return nil
}

// diagnose runs every check in display order.
func diagnose(ctx context.Context, cfg *config.Config, logger *slog.Logger) *DoctorOutput {
	out := &DoctorOutput{}
	add := func(c HealthCheck) {
		switch c.Status {
		case checkError:
			out.Errors++
		case checkWarn:
			out.Warnings++
		}
		out.Checks = append(out.Checks, c)
	}

	if cfg.ConfigFile != "" {
		add(HealthCheck{ID: "CF01", Name: "Config file", Group: "configuration", Status: checkPass, Detail: cfg.ConfigFile})
	} else {
		add(HealthCheck{ID: "CF01", Name: "Config file", Group: "configuration", Status: checkWarn, Detail: "no leapetl.yaml found, using built-in defaults"})
	}

	for _, c := range checkInput(ctx, cfg) {
		add(c)
	}
	for _, c := range checkTarget(ctx, cfg, logger) {
		add(c)
	}
	add(checkHistory(cfg, logger))

	return out
}

func checkInput(ctx context.Context, cfg *config.Config) []HealthCheck {
	pc, err := cfg.PipelineConfig()
	if err != nil {
		return []HealthCheck{{ID: "IN01", Name: "Input file", Group: "input", Status: checkError, Detail: err.Error()}}
	}

	ds, dialect, err := pipeline.NewLoader(pc, nil).Detect(ctx)
	switch {
	case errors.Is(err, pipeline.ErrMissingInput):
		return []HealthCheck{{ID: "IN01", Name: "Input file", Group: "input", Status: checkError, Detail: "not found: " + pc.InputPath}}
	case err != nil:
		return []HealthCheck{
			{ID: "IN01", Name: "Input file", Group: "input", Status: checkPass, Detail: pc.InputPath},
			{ID: "IN02", Name: "Input dialect", Group: "input", Status: checkError, Detail: err.Error()},
		}
	}

	checks := []HealthCheck{{ID: "IN01", Name: "Input file", Group: "input", Status: checkPass, Detail: pc.InputPath}}

	detail := fmt.Sprintf("%d rows, %d columns, read as %s", ds.Len(), ds.Width(), dialect)
	status := checkPass
	if dialect != pc.Dialects[0] {
		status = checkWarn
		detail += fmt.Sprintf(" after %s failed", pc.Dialects[0])
	}
	checks = append(checks, HealthCheck{ID: "IN02", Name: "Input dialect", Group: "input", Status: status, Detail: detail})

	var missing []string
	status, detail = checkPass, fmt.Sprintf("%d rename(s) apply", len(pc.Renames))
	for _, r := range pc.Renames {
		renamed, err := ds.RenameColumn(r.From, r.To)
		if err != nil {
			status, detail = checkError, err.Error()
			break
		}
		if !renamed {
			missing = append(missing, r.From)
		}
	}
	if status == checkPass && len(missing) > 0 {
		status, detail = checkWarn, "no such column: "+strings.Join(missing, ", ")
	}
	checks = append(checks, HealthCheck{ID: "IN03", Name: "Rename sources", Group: "input", Status: status, Detail: detail})

	return checks
}

func checkTarget(ctx context.Context, cfg *config.Config, logger *slog.Logger) []HealthCheck {
	target := cfg.Target
	name := target.Type + " " + target.Database

	if target.IsFileBased() && target.Database != ":memory:" {
		if _, err := os.Stat(target.Database); errors.Is(err, os.ErrNotExist) {
			return []HealthCheck{{ID: "TG01", Name: "Target database", Group: "target", Status: checkWarn, Detail: "not created yet: " + target.Database}}
		}
	}

	db, err := adapter.NewAdapter(target.AdapterConfig(), logger)
	if err == nil {
		err = db.Connect(ctx, target.AdapterConfig())
	}
	if err != nil {
		return []HealthCheck{{ID: "TG01", Name: "Target database", Group: "target", Status: checkError, Detail: err.Error()}}
	}
	defer func() { _ = db.Close() }()

	checks := []HealthCheck{{ID: "TG01", Name: "Target database", Group: "target", Status: checkPass, Detail: name}}

	meta, err := db.GetTableMetadata(ctx, cfg.Table)
	if err != nil {
		checks = append(checks, HealthCheck{ID: "TG02", Name: "Target table", Group: "target", Status: checkWarn, Detail: err.Error()})
	} else {
		checks = append(checks, HealthCheck{ID: "TG02", Name: "Target table", Group: "target", Status: checkPass,
			Detail: fmt.Sprintf("%s has %d rows, %d columns", meta.Name, meta.RowCount, len(meta.Columns))})
	}
	return checks
}

func checkHistory(cfg *config.Config, logger *slog.Logger) HealthCheck {
	c := HealthCheck{ID: "HS01", Name: "Run history", Group: "history"}
	if cfg.StatePath == "" {
		c.Status, c.Detail = checkWarn, "disabled"
		return c
	}
	if _, err := os.Stat(cfg.StatePath); errors.Is(err, os.ErrNotExist) {
		c.Status, c.Detail = checkPass, "will be created at "+cfg.StatePath
		return c
	}

	store := state.NewSQLiteStore(logger)
	if err := store.OpenAndMigrate(cfg.StatePath); err != nil {
		c.Status, c.Detail = checkError, err.Error()
		return c
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(1)
	if err != nil {
		c.Status, c.Detail = checkError, err.Error()
		return c
	}
	c.Status, c.Detail = checkPass, cfg.StatePath
	if len(runs) > 0 {
		c.Detail += fmt.Sprintf(", last run %s", runs[0].Status)
	}
	return c
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles

	r.Println("")
	r.Println(styles.Header.Render("leapetl doctor"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("")
			r.Println(styles.Key.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case checkWarn:
			icon = styles.Warning.Render("!")
		case checkError:
			icon = styles.Error.Render("✗")
		}
		r.Printf("   %s %s: %s\n", icon, check.ID, check.Name)
		if check.Detail != "" {
			r.Println(styles.Muted.Render("       " + check.Detail))
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Printf("   %d error(s), %d warning(s)\n", out.Errors, out.Warnings)
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# leapetl doctor")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("")
			r.Println("## " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.ID, check.Name)
		if check.Detail != "" {
			r.Printf(" (%s)", check.Detail)
		}
		r.Println("")
	}

	r.Println("")
	r.Printf("**%d error(s), %d warning(s)**\n", out.Errors, out.Warnings)
}
