package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapetl/internal/cli/config"
	"github.com/leapstack-labs/leapetl/internal/cli/output"
	"github.com/leapstack-labs/leapetl/internal/pipeline"
	"github.com/leapstack-labs/leapetl/internal/state"
)

// errNoConfig is returned when a command runs without a loaded configuration.
var errNoConfig = errors.New("configuration not loaded")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Pipeline *pipeline.Pipeline
	// Store is nil when run history is disabled or could not be opened.
	Store *state.SQLiteStore
}

// NewCommandContext builds the pipeline and, when configured, opens the run
// history store. A history store that fails to open is logged and left out;
// the job itself does not depend on it.
// The returned cleanup function must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc, err := NewCommandContextWithoutPipeline(cmd)
	if err != nil {
		return nil, nil, err
	}

	pc, err := cc.Cfg.PipelineConfig()
	if err != nil {
		return nil, nil, err
	}

	var recorder pipeline.Recorder
	if cc.Cfg.StatePath != "" {
		store := state.NewSQLiteStore(cc.Logger)
		if err := store.OpenAndMigrate(cc.Cfg.StatePath); err != nil {
			cc.Logger.Warn("run history disabled",
				slog.String("path", cc.Cfg.StatePath),
				slog.String("error", err.Error()))
		} else {
			cc.Store = store
			recorder = store
		}
	}

	cc.Pipeline = pipeline.New(pc, cc.Logger, recorder)

	cleanup := func() {
		if cc.Store != nil {
			if err := cc.Store.Close(); err != nil {
				cc.Logger.Warn("failed to close run history", slog.String("error", err.Error()))
			}
		}
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutPipeline returns the configuration, logger and
// renderer only. Useful for commands that don't run the job.
func NewCommandContextWithoutPipeline(cmd *cobra.Command) (*CommandContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, errNoConfig
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: rendererFor(cmd, cfg),
	}, nil
}

// rendererFor returns the renderer stored by the root command, or one built
// from the configured output mode.
func rendererFor(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	if ctx := cmd.Context(); ctx != nil {
		if r := output.FromContextOrNil(ctx); r != nil {
			return r
		}
	}
	mode, err := output.ParseMode(cfg.Output)
	if err != nil {
		mode = output.ModeAuto
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
}
