package viz

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/bloodline/internal/dag"
)

// MermaidTree renders a tree as a Mermaid flowchart with arrows from each
// child to its parent, so sources point at what they feed.
func MermaidTree(t *Tree) (string, error) {
	if t == nil || len(t.Data) == 0 {
		return "", ErrNoData
	}

	f := newFlowchart()
	var walk func(n TreeNode)
	walk = func(n TreeNode) {
		parent := f.node(n.Name)
		for _, c := range n.Children {
			f.edge(f.node(c.Name), parent)
			walk(c)
		}
	}
	for _, root := range t.Data {
		walk(root)
	}
	return f.String(), nil
}

// MermaidSankey renders a sankey as a Mermaid sankey-beta diagram.
func MermaidSankey(s *Sankey) (string, error) {
	if s == nil || len(s.Links) == 0 {
		return "", ErrNoData
	}

	var b strings.Builder
	b.WriteString("sankey-beta\n\n")
	for _, l := range s.Links {
		fmt.Fprintf(&b, "%s,%s,%d\n", csvField(l.Source), csvField(l.Target), l.Value)
	}
	return b.String(), nil
}

// MermaidGraph renders a table graph as a Mermaid flowchart. Tables without
// edges are still listed.
func MermaidGraph(g *dag.Graph) (string, error) {
	if g == nil || g.NodeCount() == 0 {
		return "", ErrNoData
	}

	f := newFlowchart()
	for _, t := range g.Tables() {
		id := f.node(t.Name)
		if t.SelfReferencing {
			f.edge(id, id)
		}
	}
	for _, e := range g.Edges() {
		f.edge(f.node(e.Source), f.node(e.Target))
	}
	return f.String(), nil
}

// flowchart assigns stable ids to labels in order of first use.
type flowchart struct {
	ids   map[string]string
	lines []string
}

func newFlowchart() *flowchart {
	return &flowchart{ids: make(map[string]string)}
}

func (f *flowchart) node(label string) string {
	if id, ok := f.ids[label]; ok {
		return id
	}
	id := fmt.Sprintf("n%d", len(f.ids))
	f.ids[label] = id
	f.lines = append(f.lines, fmt.Sprintf("    %s[\"%s\"]", id, escapeLabel(label)))
	return id
}

func (f *flowchart) edge(from, to string) {
	f.lines = append(f.lines, fmt.Sprintf("    %s --> %s", from, to))
}

func (f *flowchart) String() string {
	return "flowchart LR\n" + strings.Join(f.lines, "\n") + "\n"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// csvField quotes a sankey field when it holds a comma or a quote.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
