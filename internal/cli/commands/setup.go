package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/cli/config"
	"github.com/leapstack-labs/bloodline/internal/cli/output"
	"github.com/leapstack-labs/bloodline/internal/lineage"
	"github.com/leapstack-labs/bloodline/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the config and logger
// stored on the command context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := commandContext(cmd)
	cfg := config.GetConfig(ctx)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// ScriptOptions returns the analysis options of the current config.
func (c *CommandContext) ScriptOptions() lineage.ScriptOptions {
	return lineage.ScriptOptions{
		Normalize:   c.Cfg.Normalize,
		Concurrency: c.Cfg.Concurrency,
		Logger:      c.Logger,
	}
}

// OpenStore opens and migrates the history database, creating its
// directory as needed. The caller must close the store.
func (c *CommandContext) OpenStore(ctx context.Context) (*state.Store, error) {
	path := c.Cfg.StatePath
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewStore(c.Logger)
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
