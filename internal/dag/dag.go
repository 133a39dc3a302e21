// Package dag builds a table dependency graph from the lineage of many
// statements. An edge runs from a source table to the table written from
// it, so parents are upstream and children are downstream.
package dag

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leapstack-labs/bloodline/internal/lineage"
)

// ErrCycle is returned by ordering operations on a graph with a cycle.
var ErrCycle = errors.New("cycle detected")

// Table is a node of the graph.
type Table struct {
	// Name is the table name as written in the SQL.
	Name string
	// Writers lists the indexes of the statements that write the table.
	Writers []int
	// SelfReferencing is set when a statement reads the table it writes.
	SelfReferencing bool
}

// Edge is a dependency of Target on Source.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is a table dependency graph.
type Graph struct {
	tables  map[string]*Table
	edges   map[string][]string // source -> targets (downstream)
	parents map[string][]string // target -> sources (upstream)
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		tables:  make(map[string]*Table),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// FromStatements builds a graph from the table lineage of a script.
func FromStatements(stmts []lineage.StatementLineage) *Graph {
	g := NewGraph()
	for _, s := range stmts {
		g.AddLineage(s.Index, s.Tables)
	}
	return g
}

// FromEdges builds a graph from stored edges.
func FromEdges(edges []Edge) *Graph {
	g := NewGraph()
	for _, e := range edges {
		g.AddDependency(e.Source, e.Target)
	}
	return g
}

// AddTable adds a table if it is not in the graph yet and returns it.
func (g *Graph) AddTable(name string) *Table {
	if t, exists := g.tables[name]; exists {
		return t
	}
	t := &Table{Name: name}
	g.tables[name] = t
	g.edges[name] = []string{}
	g.parents[name] = []string{}
	return t
}

// AddDependency records that target is written from source. Both tables
// are added as needed. A table depending on itself is flagged as
// SelfReferencing instead of getting an edge.
func (g *Graph) AddDependency(source, target string) {
	g.AddTable(source)
	t := g.AddTable(target)

	if source == target {
		t.SelfReferencing = true
		return
	}

	if !contains(g.edges[source], target) {
		g.edges[source] = append(g.edges[source], target)
	}
	if !contains(g.parents[target], source) {
		g.parents[target] = append(g.parents[target], source)
	}
}

// AddLineage adds the tables of one statement. Only write lineage adds
// edges; the tables of a read are added as isolated nodes.
func (g *Graph) AddLineage(stmtIndex int, l lineage.TableLineage) {
	if l.Mode != lineage.ModeWrite {
		for _, name := range l.Tables {
			g.AddTable(name)
		}
		return
	}

	target := g.AddTable(l.Target)
	target.Writers = append(target.Writers, stmtIndex)
	for _, src := range l.Sources {
		g.AddDependency(src, l.Target)
	}
}

// Table returns a table by name.
func (g *Graph) Table(name string) (*Table, bool) {
	t, exists := g.tables[name]
	return t, exists
}

// Sources returns the direct upstream tables of name.
func (g *Graph) Sources(name string) []string {
	return sorted(g.parents[name])
}

// Targets returns the tables written directly from name.
func (g *Graph) Targets(name string) []string {
	return sorted(g.edges[name])
}

// Tables returns all tables sorted by name.
func (g *Graph) Tables() []*Table {
	tables := make([]*Table, 0, len(g.tables))
	for _, t := range g.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Name < tables[j].Name
	})
	return tables
}

// Edges returns all edges sorted by source, then target.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for src, targets := range g.edges {
		for _, tgt := range targets {
			edges = append(edges, Edge{Source: src, Target: tgt})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// NodeCount returns the number of tables in the graph.
func (g *Graph) NodeCount() int {
	return len(g.tables)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.edges {
		count += len(targets)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		recStack[name] = true

		for _, next := range sorted(g.edges[name]) {
			if !visited[next] {
				path[next] = name
				if dfs(next) {
					return true
				}
			} else if recStack[next] {
				cyclePath = []string{next}
				for curr := name; curr != next; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{next}, cyclePath...)
				return true
			}
		}

		recStack[name] = false
		return false
	}

	for _, name := range g.names() {
		if !visited[name] && dfs(name) {
			return true, cyclePath
		}
	}

	return false, nil
}

// TopologicalSort returns table names with every source before the tables
// written from it. Returns ErrCycle if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("%w: %v", ErrCycle, cyclePath)
	}

	visited := make(map[string]bool)
	var result []string

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true

		for _, src := range sorted(g.parents[name]) {
			visit(src)
		}
		result = append(result, name)
	}

	for _, name := range g.names() {
		visit(name)
	}

	return result, nil
}

// Levels groups tables by distance from the roots. Level 0 holds tables no
// statement writes from another table; a table at level N is written from
// at least one table at level N-1.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("%w: %v", ErrCycle, cyclePath)
	}

	assigned := make(map[string]int)

	var getLevel func(name string) int
	getLevel = func(name string) int {
		if level, ok := assigned[name]; ok {
			return level
		}

		level := 0
		for _, src := range g.parents[name] {
			if l := getLevel(src) + 1; l > level {
				level = l
			}
		}
		assigned[name] = level
		return level
	}

	maxLevel := -1
	for name := range g.tables {
		if level := getLevel(name); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]string, maxLevel+1)
	for i := range levels {
		levels[i] = []string{}
	}
	for name, level := range assigned {
		levels[level] = append(levels[level], name)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}

	return levels, nil
}

// Downstream returns every table written, directly or not, from name.
func (g *Graph) Downstream(name string) []string {
	return g.reach(name, g.edges)
}

// Upstream returns every table name is written from, directly or not.
func (g *Graph) Upstream(name string) []string {
	return g.reach(name, g.parents)
}

// Affected returns the given tables plus everything downstream of them.
// Unknown names are ignored.
func (g *Graph) Affected(names []string) []string {
	affected := make(map[string]bool)
	for _, name := range names {
		if _, exists := g.tables[name]; !exists {
			continue
		}
		affected[name] = true
		for _, d := range g.Downstream(name) {
			affected[d] = true
		}
	}
	return keys(affected)
}

func (g *Graph) reach(name string, adj map[string][]string) []string {
	seen := make(map[string]bool)

	var mark func(n string)
	mark = func(n string) {
		for _, next := range adj[n] {
			if !seen[next] {
				seen[next] = true
				mark(next)
			}
		}
	}
	mark(name)

	delete(seen, name)
	return keys(seen)
}

// Roots returns tables that are not written from any other table.
func (g *Graph) Roots() []string {
	var roots []string
	for name := range g.tables {
		if len(g.parents[name]) == 0 {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns tables nothing is written from.
func (g *Graph) Leaves() []string {
	var leaves []string
	for name := range g.tables {
		if len(g.edges[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph containing only the named tables and the
// edges between them.
func (g *Graph) Subgraph(names []string) *Graph {
	sub := NewGraph()
	include := make(map[string]bool)

	for _, name := range names {
		t, exists := g.tables[name]
		if !exists {
			continue
		}
		include[name] = true
		st := sub.AddTable(name)
		st.Writers = append([]int(nil), t.Writers...)
		st.SelfReferencing = t.SelfReferencing
	}

	for name := range include {
		for _, tgt := range g.edges[name] {
			if include[tgt] {
				sub.AddDependency(name, tgt)
			}
		}
	}

	return sub
}

// Lineage returns the subgraph of name and everything up- and downstream
// of it.
func (g *Graph) Lineage(name string) *Graph {
	names := append([]string{name}, g.Upstream(name)...)
	names = append(names, g.Downstream(name)...)
	return g.Subgraph(names)
}

func (g *Graph) names() []string {
	names := make([]string, 0, len(g.tables))
	for name := range g.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
