package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/lineage"
)

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs saved in the history database",
		Long: `List lineage runs saved with "analyze --save", newest first.

Use the subcommands to show or delete a run, or to list every column seen
on a table across all runs.`,
		Example: `  bloodline history
  bloodline history --limit 5
  bloodline history show 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed
  bloodline history columns mart.orders`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max runs to list (0 = all)")

	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryRemoveCommand())
	cmd.AddCommand(newHistoryColumnsCommand())

	return cmd
}

func runHistoryList(cmd *cobra.Command, limit int) error {
	c := NewCommandContext(cmd)
	ctx := commandContext(cmd)

	store, err := c.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	r := c.Renderer
	if ok, err := r.Data(runs); ok {
		return err
	}
	if len(runs) == 0 {
		r.Println(r.Muted("No saved runs."))
		return nil
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Source,
			run.CreatedAt.Local().Format(time.DateTime),
			strconv.Itoa(run.StatementCount),
		})
	}
	r.Table([]string{"ID", "Source", "Saved", "Statements"}, rows)
	return nil
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the lineage of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			ctx := commandContext(cmd)

			store, err := c.OpenStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.GetRun(ctx, args[0])
			if err != nil {
				return err
			}

			if ok, err := c.Renderer.Data(run); ok {
				return err
			}
			c.Renderer.KeyValue("Run", run.ID)
			c.Renderer.KeyValue("Saved", run.CreatedAt.Local().Format(time.DateTime))
			c.Renderer.Println("")
			return renderFiles(c.Renderer, []lineage.FileLineage{{
				Path:       run.Source,
				Statements: run.Statements,
			}}, reportAll)
		},
	}
}

func newHistoryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <run-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete saved runs",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			ctx := commandContext(cmd)

			store, err := c.OpenStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			for _, id := range args {
				if err := store.DeleteRun(ctx, id); err != nil {
					return err
				}
				c.Renderer.Success("Deleted run " + id)
			}
			return nil
		},
	}
}

func newHistoryColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List columns seen on a table across saved runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			ctx := commandContext(cmd)

			store, err := c.OpenStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cols, err := store.TableColumns(ctx, args[0])
			if err != nil {
				return err
			}

			r := c.Renderer
			if ok, err := r.Data(cols); ok {
				return err
			}
			if len(cols) == 0 {
				r.Println(r.Muted("No columns recorded for " + args[0] + "."))
				return nil
			}

			r.Header(1, "Columns of "+args[0])
			rows := make([][]string, 0, len(cols))
			for _, col := range cols {
				rows = append(rows, []string{col.Column, col.Role, strconv.Itoa(col.Runs)})
			}
			r.Table([]string{"Column", "Role", "Runs"}, rows)
			return nil
		},
	}
}
