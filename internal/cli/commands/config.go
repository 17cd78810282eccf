package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, leapetl.yaml, LEAPETL_* environment
variables and flags have been merged, with every path resolved. The target
password is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContextWithoutPipeline(cmd)
			if err != nil {
				return err
			}
			if cc.Cfg.ConfigFile != "" {
				cc.Logger.Debug("using config file", "path", cc.Cfg.ConfigFile)
			}

			redacted := cc.Cfg.Redacted()
			out, err := yaml.Marshal(&redacted)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
