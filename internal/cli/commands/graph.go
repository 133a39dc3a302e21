package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/cli/output"
	"github.com/leapstack-labs/bloodline/internal/dag"
	"github.com/leapstack-labs/bloodline/internal/lineage"
	"github.com/leapstack-labs/bloodline/internal/viz"
)

// GraphOptions holds options for the graph command.
type GraphOptions struct {
	Table   string
	Depth   int
	Mermaid bool
	History bool
}

// GraphOutput is the data output of the graph command.
type GraphOutput struct {
	Levels      []GraphLevel `json:"levels" yaml:"levels"`
	TotalTables int          `json:"total_tables" yaml:"total_tables"`
	TotalEdges  int          `json:"total_edges" yaml:"total_edges"`
}

// GraphLevel is one level of the graph output.
type GraphLevel struct {
	Level  int         `json:"level" yaml:"level"`
	Tables []GraphNode `json:"tables" yaml:"tables"`
}

// GraphNode is one table of the graph output.
type GraphNode struct {
	Name            string   `json:"name" yaml:"name"`
	Sources         []string `json:"sources" yaml:"sources"`
	Targets         []string `json:"targets" yaml:"targets"`
	SelfReferencing bool     `json:"self_referencing,omitempty" yaml:"self_referencing,omitempty"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	opts := &GraphOptions{}

	cmd := &cobra.Command{
		Use:   "graph [file]...",
		Short: "Show the table dependency graph",
		Long: `Build the table dependency graph of all write statements in the given
files, optionally merged with every run saved in the history database.

Tables are grouped by level: level 0 holds tables no statement writes from
another table, and every other table is written from the level above.`,
		Example: `  # Show the graph of a set of scripts
  bloodline graph etl/*.sql

  # Show what feeds and what is fed by one table
  bloodline graph etl/*.sql --table mart.orders

  # Limit traversal depth
  bloodline graph etl/*.sql --table mart.orders --depth 1

  # Graph of all saved runs as a Mermaid flowchart
  bloodline graph --history --mermaid`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Only show the lineage of this table")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Max traversal depth with --table (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Mermaid, "mermaid", false, "Print a Mermaid flowchart")
	cmd.Flags().BoolVar(&opts.History, "history", false, "Include edges of saved runs")

	return cmd
}

func runGraph(cmd *cobra.Command, paths []string, opts *GraphOptions) error {
	if len(paths) == 0 && !opts.History {
		return errors.New("no input: pass SQL files or --history")
	}

	c := NewCommandContext(cmd)
	ctx := commandContext(cmd)
	r := c.Renderer

	g := dag.NewGraph()
	if len(paths) > 0 {
		files, err := lineage.AnalyzeFiles(ctx, paths, c.ScriptOptions())
		if err != nil {
			return err
		}
		for _, f := range files {
			for _, stmt := range f.Statements {
				g.AddLineage(stmt.Index, stmt.Tables)
			}
		}
	}

	if opts.History {
		store, err := c.OpenStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		edges, err := store.TableEdges(ctx)
		if err != nil {
			return err
		}
		for _, e := range edges {
			g.AddDependency(e.Source, e.Target)
		}
	}

	if opts.Table != "" {
		if _, ok := g.Table(opts.Table); !ok {
			return fmt.Errorf("table not found: %s", opts.Table)
		}
		names := []string{opts.Table}
		names = append(names, upstreamWithDepth(g, opts.Table, opts.Depth)...)
		names = append(names, downstreamWithDepth(g, opts.Table, opts.Depth)...)
		g = g.Subgraph(names)
	}

	if opts.Mermaid {
		return graphMermaid(r, g)
	}

	levels, err := g.Levels()
	if err != nil {
		return fmt.Errorf("failed to get graph levels: %w", err)
	}

	if ok, err := r.Data(graphData(g, levels)); ok {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		graphMarkdown(r, g, levels)
		return nil
	}
	graphText(r, g, levels)
	return nil
}

func graphMermaid(r *output.Renderer, g *dag.Graph) error {
	text, err := viz.MermaidGraph(g)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatCode("mermaid", text))
		return nil
	}
	r.Printf("%s", text)
	return nil
}

func graphData(g *dag.Graph, levels [][]string) GraphOutput {
	out := GraphOutput{
		Levels:      make([]GraphLevel, 0, len(levels)),
		TotalTables: g.NodeCount(),
		TotalEdges:  g.EdgeCount(),
	}
	for i, level := range levels {
		gl := GraphLevel{Level: i, Tables: make([]GraphNode, 0, len(level))}
		for _, name := range level {
			t, _ := g.Table(name)
			gl.Tables = append(gl.Tables, GraphNode{
				Name:            name,
				Sources:         g.Sources(name),
				Targets:         g.Targets(name),
				SelfReferencing: t != nil && t.SelfReferencing,
			})
		}
		out.Levels = append(out.Levels, gl)
	}
	return out
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, g *dag.Graph, levels [][]string) {
	styles := r.Styles()

	r.Header(1, "Table Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, name := range level {
			r.Printf("  %s\n", styles.Table.Render(name))
			if sources := g.Sources(name); len(sources) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("written from:"), strings.Join(sources, ", "))
			}
			if targets := g.Targets(name); len(targets) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("feeds:"), strings.Join(targets, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d tables, %d dependencies", g.NodeCount(), g.EdgeCount())))
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, g *dag.Graph, levels [][]string) {
	r.Println(output.FormatHeader(1, "Table Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Sources)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, name := range level {
			r.Printf("- %s\n", name)
			if sources := g.Sources(name); len(sources) > 0 {
				r.Printf("  - written from: %s\n", strings.Join(sources, ", "))
			}
			if targets := g.Targets(name); len(targets) > 0 {
				r.Printf("  - feeds: %s\n", strings.Join(targets, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Tables", fmt.Sprintf("%d", g.NodeCount())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", g.EdgeCount())))
}

// upstreamWithDepth returns upstream tables with optional depth limit.
func upstreamWithDepth(g *dag.Graph, name string, maxDepth int) []string {
	if maxDepth == 0 {
		return g.Upstream(name)
	}
	return walkWithDepth(name, maxDepth, g.Sources)
}

// downstreamWithDepth returns downstream tables with optional depth limit.
func downstreamWithDepth(g *dag.Graph, name string, maxDepth int) []string {
	if maxDepth == 0 {
		return g.Downstream(name)
	}
	return walkWithDepth(name, maxDepth, g.Targets)
}

func walkWithDepth(name string, maxDepth int, next func(string) []string) []string {
	visited := map[string]bool{name: true}
	var result []string

	var traverse func(id string, depth int)
	traverse = func(id string, depth int) {
		if depth > maxDepth {
			return
		}
		for _, n := range next(id) {
			if !visited[n] {
				visited[n] = true
				result = append(result, n)
				traverse(n, depth+1)
			}
		}
	}

	traverse(name, 1)
	return result
}
