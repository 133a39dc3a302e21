package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/cli/output"
	"github.com/leapstack-labs/bloodline/internal/lineage"
	"github.com/leapstack-labs/bloodline/internal/viz"
)

// VizOptions holds options for the viz command.
type VizOptions struct {
	Kind      string
	Statement int
	Mermaid   bool
}

// NewVizCommand creates the viz command.
func NewVizCommand() *cobra.Command {
	opts := &VizOptions{}

	cmd := &cobra.Command{
		Use:   "viz <file>",
		Short: "Print diagram data for statements",
		Long: `Print the lineage of each statement as diagram data: a tree of tables
or a sankey of tables and columns, as JSON for chart libraries or as a
Mermaid diagram. Statements without tables are skipped.`,
		Example: `  # Table trees of every statement as JSON
  bloodline viz etl.sql

  # Column sankey of the second statement as Mermaid
  bloodline viz etl.sql --kind sankey --statement 2 --mermaid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViz(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "tree", "Diagram kind (tree|sankey)")
	cmd.Flags().IntVar(&opts.Statement, "statement", 0, "Only this statement, 1-based (0 = all)")
	cmd.Flags().BoolVar(&opts.Mermaid, "mermaid", false, "Print Mermaid text instead of JSON")

	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"tree", "sankey"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runViz(cmd *cobra.Command, path string, opts *VizOptions) error {
	if opts.Kind != "tree" && opts.Kind != "sankey" {
		return fmt.Errorf("unknown diagram kind %q (want tree|sankey)", opts.Kind)
	}

	c := NewCommandContext(cmd)
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	stmts := lineage.AnalyzeScript(string(data), c.ScriptOptions())

	if opts.Statement != 0 {
		if opts.Statement < 0 || opts.Statement > len(stmts) {
			return fmt.Errorf("statement %d out of range, %s has %d", opts.Statement, path, len(stmts))
		}
		stmts = stmts[opts.Statement-1 : opts.Statement]
	}

	var diagrams []any
	var texts []string
	for _, stmt := range stmts {
		d, text, err := diagram(stmt, opts)
		if errors.Is(err, viz.ErrNoData) {
			c.Logger.Debug("nothing to draw", "statement", stmt.Index+1)
			continue
		}
		if err != nil {
			return err
		}
		diagrams = append(diagrams, d)
		texts = append(texts, text)
	}
	if len(diagrams) == 0 {
		return viz.ErrNoData
	}

	r := c.Renderer
	if opts.Mermaid {
		for _, text := range texts {
			if r.EffectiveMode() == output.ModeMarkdown {
				r.Println(output.FormatCode("mermaid", text))
				continue
			}
			r.Printf("%s", text)
		}
		return nil
	}

	var v any = diagrams
	if len(diagrams) == 1 {
		v = diagrams[0]
	}
	if r.EffectiveMode() == output.ModeYAML {
		return r.YAML(v)
	}
	return r.JSON(v)
}

// diagram builds the diagram of one statement, and its Mermaid text when
// asked for.
func diagram(stmt lineage.StatementLineage, opts *VizOptions) (any, string, error) {
	if opts.Kind == "sankey" {
		s, err := viz.ColumnSankey(stmt.TableNames, stmt.ColumnNames)
		if err != nil {
			return nil, "", err
		}
		if !opts.Mermaid {
			return s, "", nil
		}
		text, err := viz.MermaidSankey(s)
		return s, text, err
	}

	t, err := viz.TableTree(stmt.TableNames, stmt.Type)
	if err != nil {
		return nil, "", err
	}
	if !opts.Mermaid {
		return t, "", nil
	}
	text, err := viz.MermaidTree(t)
	return t, text, err
}
