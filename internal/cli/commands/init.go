package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapetl/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a leapetl.yaml with the default job settings",
		Long: `Initialize a leapetl project with a commented leapetl.yaml and a .gitignore
for the generated data and run history.

Use --example to also write a small latin-1 encoded Tipo_de_transacao.csv so
'leapetl run' works straight away.`,
		Example: `  # Initialize in current directory
  leapetl init

  # Initialize a new directory with sample data
  leapetl init my-job --example

  # Force overwrite existing files
  leapetl init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
			if ctx := cmd.Context(); ctx != nil {
				if fromCtx := output.FromContextOrNil(ctx); fromCtx != nil {
					r = fromCtx
				}
			}

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Also write a sample input file")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "leapetl.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New("leapetl.yaml already exists. Use --force to overwrite")
	}

	files, err := copyTemplate(template, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	for _, f := range files {
		r.StatusLine(f, "success", "")
	}
	r.Println("")
	r.Success("leapetl project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if template == "minimal" {
		r.Println("  1. Put your export at Tipo_de_transacao.csv (or set input)")
		r.Println("  2. Run 'leapetl run'")
	} else {
		r.Println("  1. Run 'leapetl run'")
		r.Println("  2. Run 'leapetl inspect' to see the persisted table")
	}
	return nil
}
