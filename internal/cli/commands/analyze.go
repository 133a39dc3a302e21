package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/lineage"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	Watch bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Show table and column lineage of SQL files",
		Long: `Analyze every statement of the given SQL files and print the tables
each statement reads and writes, with the columns attributed to them.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Analyze a script
  bloodline analyze etl.sql

  # Save the result to the history database
  bloodline analyze --save etl/*.sql

  # Re-analyze whenever a file changes
  bloodline analyze --watch etl.sql

  # Output as JSON
  bloodline analyze etl.sql --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts, reportAll)
		},
	}

	cmd.Flags().Bool("save", false, "Save the result to the history database")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-analyze when a file changes")

	return cmd
}

func runAnalyze(cmd *cobra.Command, paths []string, opts *AnalyzeOptions, kind reportKind) error {
	c := NewCommandContext(cmd)
	ctx := commandContext(cmd)

	run := func() error {
		return analyzeOnce(ctx, c, paths, kind)
	}
	if err := run(); err != nil {
		return err
	}
	if opts == nil || !opts.Watch {
		return nil
	}

	return watchFiles(ctx, paths, c.Logger, func() {
		c.Renderer.Println(c.Renderer.Muted("--- change detected, re-analyzing ---"))
		if err := run(); err != nil {
			c.Renderer.Error(err.Error())
		}
	})
}

func analyzeOnce(ctx context.Context, c *CommandContext, paths []string, kind reportKind) error {
	files, err := lineage.AnalyzeFiles(ctx, paths, c.ScriptOptions())
	if err != nil {
		return err
	}

	if err := renderFiles(c.Renderer, files, kind); err != nil {
		return err
	}

	if c.Cfg.Save {
		return saveFiles(ctx, c, files)
	}
	return nil
}

func saveFiles(ctx context.Context, c *CommandContext, files []lineage.FileLineage) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, f := range files {
		run, err := store.SaveRun(ctx, f.Path, f.Statements)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", f.Path, err)
		}
		c.Logger.Info("saved run", "id", run.ID, "source", f.Path)
		_, _ = fmt.Fprintf(c.Renderer.ErrWriter(), "Saved %s as run %s\n", f.Path, run.ID)
	}
	return nil
}
