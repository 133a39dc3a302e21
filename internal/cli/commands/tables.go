package commands

import "github.com/spf13/cobra"

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <file>...",
		Short: "Show table lineage of SQL files",
		Long: `Print the tables each statement reads, and for statements that write,
the target table and the tables it is written from.`,
		Example: `  bloodline tables etl.sql
  bloodline tables etl.sql -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, nil, reportTables)
		},
	}
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <file>...",
		Short: "Show column lineage of SQL files",
		Long: `Print the columns attributed to each table of each statement. Columns
are matched to tables by the order of SELECT keywords, and alias names
are removed.`,
		Example: `  bloodline columns etl.sql
  bloodline columns etl.sql -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, nil, reportColumns)
		},
	}
}
