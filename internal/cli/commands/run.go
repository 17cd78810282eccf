package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapetl/internal/pipeline"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the whole job: load, transform, persist",
		Long: `Run every stage in order and stop at the first failure.

Stages after a failed one are reported as skipped. Each invocation is
recorded in the run history unless state_path is empty.`,
		Example: `  # Run with leapetl.yaml from the current directory
  leapetl run

  # Write into DuckDB instead of SQLite
  leapetl run --target-type duckdb --database data/etl.duckdb

  # Machine-readable output
  leapetl run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, "")
		},
	}
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	return newStepCommand(pipeline.StageLoad,
		"Read the raw input file and write the normalized copy",
		`Read the input file, trying each configured delimiter in order, and write
the result as UTF-8 comma-separated text to the loaded path.`)
}

// NewTransformCommand creates the transform command.
func NewTransformCommand() *cobra.Command {
	return newStepCommand(pipeline.StageTransform,
		"Rename columns and truncate the loaded file",
		`Read the loaded file, apply the configured column renames in order, keep
the first row_limit rows and write the transformed file.`)
}

// NewPersistCommand creates the persist command.
func NewPersistCommand() *cobra.Command {
	return newStepCommand(pipeline.StagePersist,
		"Replace the target table with the transformed file",
		`Read the transformed file and replace the target table with its contents.
The table is dropped and recreated, so earlier rows never survive.`)
}

func newStepCommand(step, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   step,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, step)
		},
	}
}

// runPipeline runs the whole job when step is empty, otherwise the named step.
func runPipeline(cmd *cobra.Command, step string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	command := "run"
	var (
		result *pipeline.Result
		runErr error
	)
	if step == "" {
		result, runErr = cc.Pipeline.Run(ctx)
	} else {
		command = step
		result, runErr = cc.Pipeline.RunStep(ctx, step)
	}

	if err := renderRunReport(cc.Renderer, newRunReport(command, result, runErr)); err != nil {
		return err
	}
	return runErr
}
