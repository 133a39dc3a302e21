// Package viz turns lineage results into diagram data: a tree of tables for
// one statement, a sankey of tables and columns, and Mermaid text for both
// and for a whole table graph.
//
// Tree and Sankey marshal to the series shape of ECharts tree and sankey
// charts.
package viz

import (
	"errors"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no lineage data to visualize")

// Link values of the sankey diagram.
const (
	TableLinkValue  = 10
	ColumnLinkValue = 5
)

// TreeNode is one node of a tree diagram.
type TreeNode struct {
	Name     string     `json:"name"`
	Children []TreeNode `json:"children,omitempty"`
}

// Tree is the table lineage of one statement as a tree.
type Tree struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Data     []TreeNode `json:"data"`
}

// TableTree builds a tree from the table names of a statement in discovery
// order. For a write the first table is the root and the others are its
// children; for a SELECT all tables hang below a SELECT root. Duplicate
// names are dropped, keeping the first occurrence.
func TableTree(tableNames []string, stmtType string) (*Tree, error) {
	names := dedup(tableNames)
	if len(names) == 0 {
		return nil, ErrNoData
	}

	var root TreeNode
	var title string
	if stmtType != "SELECT" {
		root = TreeNode{Name: names[0], Children: leaves(names[1:])}
		title = "lineage-" + stmtType
	} else {
		root = TreeNode{Name: "SELECT", Children: leaves(names)}
		title = "query-" + stmtType
	}

	return &Tree{
		Title:    title,
		Subtitle: "table lineage",
		Data:     []TreeNode{root},
	}, nil
}

// SankeyNode is a node of a sankey diagram.
type SankeyNode struct {
	Name string `json:"name"`
}

// SankeyLink is a weighted link of a sankey diagram.
type SankeyLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// Sankey is the column lineage of one statement as a sankey diagram.
type Sankey struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Nodes    []SankeyNode `json:"nodes"`
	Links    []SankeyLink `json:"links"`
}

// ColumnSankey builds a sankey from table names and their column sets,
// aligned by index. The first table links to every other table, and each
// other table links to its columns. The columns of the first table are not
// drawn. Self links are dropped since a sankey cannot hold cycles.
func ColumnSankey(tableNames []string, columnNames [][]string) (*Sankey, error) {
	if len(tableNames) == 0 || len(columnNames) == 0 {
		return nil, ErrNoData
	}

	var nodes []string
	nodes = append(nodes, tableNames...)
	for i := 1; i < len(columnNames); i++ {
		nodes = append(nodes, columnNames[i]...)
	}

	s := &Sankey{Title: "column lineage", Subtitle: "tables and columns"}
	for _, n := range dedup(nodes) {
		s.Nodes = append(s.Nodes, SankeyNode{Name: n})
	}

	addLink := func(src, tgt string, value int) {
		if src == tgt {
			return
		}
		s.Links = append(s.Links, SankeyLink{Source: src, Target: tgt, Value: value})
	}
	for i := 1; i < len(tableNames); i++ {
		addLink(tableNames[0], tableNames[i], TableLinkValue)
	}
	for i := 1; i < len(tableNames) && i < len(columnNames); i++ {
		for _, col := range columnNames[i] {
			addLink(tableNames[i], col, ColumnLinkValue)
		}
	}

	return s, nil
}

func leaves(names []string) []TreeNode {
	out := make([]TreeNode, 0, len(names))
	for _, n := range names {
		out = append(out, TreeNode{Name: n})
	}
	return out
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
