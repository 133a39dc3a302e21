package sqlparse

import (
	"github.com/leapstack-labs/bloodline/pkg/token"
)

// whereTerminators end a WHERE group at the same nesting level.
var whereTerminators = []string{
	"ORDER BY", "GROUP BY", "LIMIT", "UNION", "UNION ALL", "EXCEPT",
	"INTERSECT", "HAVING", "RETURNING", "WINDOW",
}

// group turns a flat slice of leaves into a grouped token list.
func group(leaves []*token.Node) []*token.Node {
	nodes, _ := groupParenthesis(leaves, 0, false)
	return groupLevel(nodes)
}

// groupParenthesis nests balanced parentheses into Parenthesis groups.
// It returns the grouped nodes and the index just past what it consumed.
// An unclosed parenthesis extends to the end of input; a stray closing
// parenthesis stays a Punctuation leaf.
func groupParenthesis(leaves []*token.Node, start int, nested bool) ([]*token.Node, int) {
	var out []*token.Node
	i := start
	for i < len(leaves) {
		tok := leaves[i]
		switch {
		case tok.Match(token.Punctuation, "("):
			inner, next := groupParenthesis(leaves, i+1, true)
			children := append([]*token.Node{tok}, inner...)
			out = append(out, token.NewGroup(token.Parenthesis, children...))
			i = next
		case tok.Match(token.Punctuation, ")") && nested:
			out = append(out, tok)
			return out, i + 1
		default:
			out = append(out, tok)
			i++
		}
	}
	return out, i
}

// groupLevel applies the grouping passes to one token list and, recursively,
// to the inside of every Parenthesis it holds.
func groupLevel(nodes []*token.Node) []*token.Node {
	for i, n := range nodes {
		if n.Kind == token.Parenthesis {
			nodes[i] = regroupParenthesis(n)
		}
	}
	nodes = groupFunctions(nodes)
	nodes = groupDotted(nodes)
	nodes = groupAliases(nodes)
	nodes = groupIdentifierLists(nodes)
	nodes = groupWhere(nodes)
	return nodes
}

// regroupParenthesis groups the tokens between the delimiters of p.
func regroupParenthesis(p *token.Node) *token.Node {
	children := p.Children
	if len(children) == 0 {
		return p
	}
	open := children[0]
	inner := children[1:]
	var closing *token.Node
	if last := len(inner) - 1; last >= 0 && inner[last].Match(token.Punctuation, ")") {
		closing = inner[last]
		inner = inner[:last]
	}

	grouped := groupLevel(append([]*token.Node(nil), inner...))
	rebuilt := append([]*token.Node{open}, grouped...)
	if closing != nil {
		rebuilt = append(rebuilt, closing)
	}
	return token.NewGroup(token.Parenthesis, rebuilt...)
}

// groupFunctions wraps NAME immediately followed by a Parenthesis into a
// Function whose children are the name Identifier and the Parenthesis.
func groupFunctions(nodes []*token.Node) []*token.Node {
	var out []*token.Node
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if n.Kind == token.Name && i+1 < len(nodes) && nodes[i+1].Kind == token.Parenthesis {
			name := token.NewGroup(token.Identifier, n)
			out = append(out, token.NewGroup(token.Function, name, nodes[i+1]))
			i++
			continue
		}
		out = append(out, n)
	}
	return out
}

// groupDotted builds Identifiers from NAME ('.' (NAME | '*'))*.
func groupDotted(nodes []*token.Node) []*token.Node {
	var out []*token.Node
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if n.Kind != token.Name {
			out = append(out, n)
			continue
		}
		parts := []*token.Node{n}
		j := i + 1
		for j+1 < len(nodes) && nodes[j].Match(token.Punctuation, ".") &&
			(nodes[j+1].Kind == token.Name || nodes[j+1].Kind == token.Wildcard) {
			parts = append(parts, nodes[j], nodes[j+1])
			j += 2
			if nodes[j-1].Kind == token.Wildcard {
				break
			}
		}
		out = append(out, token.NewGroup(token.Identifier, parts...))
		i = j - 1
	}
	return out
}

// groupAliases attaches an explicit (x AS y) or implicit (x y) alias to an
// aliasable node. When the node is already an Identifier its children are
// extended, otherwise the node becomes the first child of a new Identifier.
// The alias itself stays an Identifier child; a Parenthesis after AS (as in
// a CTE definition) is kept as is.
func groupAliases(nodes []*token.Node) []*token.Node {
	var out []*token.Node
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if !aliasable(n) {
			out = append(out, n)
			continue
		}

		j := skipWhitespace(nodes, i+1)
		if j == i+1 || j >= len(nodes) {
			out = append(out, n)
			continue
		}

		var tail []*token.Node
		next := nodes[j]
		switch {
		case next.Match(token.Keyword, "AS"):
			k := skipWhitespace(nodes, j+1)
			if k == j+1 || k >= len(nodes) {
				break
			}
			target := nodes[k]
			if target.Kind == token.Identifier && isSimpleName(target) || target.Kind == token.Parenthesis {
				tail = nodes[i+1 : k+1]
				i = k
			}
		case next.Kind == token.Identifier && isSimpleName(next) && n.Kind != token.Literal:
			tail = nodes[i+1 : j+1]
			i = j
		}

		if tail == nil {
			out = append(out, n)
			continue
		}

		var children []*token.Node
		if n.Kind == token.Identifier {
			children = append(children, n.Children...)
		} else {
			children = append(children, n)
		}
		children = append(children, tail...)
		out = append(out, token.NewGroup(token.Identifier, children...))
	}
	return out
}

// aliasable returns true for nodes that can carry an alias.
func aliasable(n *token.Node) bool {
	switch n.Kind {
	case token.Identifier:
		// Already aliased identifiers end with a whitespace-separated alias.
		return !hasAlias(n)
	case token.Function, token.Parenthesis, token.Literal:
		return true
	}
	return false
}

// hasAlias returns true if the identifier contains whitespace, which only
// happens once an alias has been attached.
func hasAlias(n *token.Node) bool {
	for _, c := range n.Children {
		if c.IsWhitespace() {
			return true
		}
	}
	return false
}

// isSimpleName returns true for an Identifier made of a single name.
func isSimpleName(n *token.Node) bool {
	return n.Kind == token.Identifier && len(n.Children) == 1 && n.Children[0].Kind == token.Name
}

// listItem returns true for nodes that may appear in an IdentifierList.
func listItem(n *token.Node) bool {
	switch n.Kind {
	case token.Identifier, token.Function, token.Literal, token.Wildcard, token.Parenthesis:
		return true
	case token.Keyword:
		return n.Match(token.Keyword, "NULL", "TRUE", "FALSE", "DEFAULT")
	}
	return false
}

// groupIdentifierLists groups item (, item)+ into an IdentifierList that
// keeps the commas and whitespace between items.
func groupIdentifierLists(nodes []*token.Node) []*token.Node {
	var out []*token.Node
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if !listItem(n) {
			out = append(out, n)
			continue
		}

		end := i
		for {
			comma := skipWhitespace(nodes, end+1)
			if comma >= len(nodes) || !nodes[comma].Match(token.Punctuation, ",") {
				break
			}
			item := skipWhitespace(nodes, comma+1)
			if item >= len(nodes) || !listItem(nodes[item]) {
				break
			}
			end = item
		}

		if end == i {
			out = append(out, n)
			continue
		}
		out = append(out, token.NewGroup(token.IdentifierList, nodes[i:end+1]...))
		i = end
	}
	return out
}

// groupWhere wraps WHERE and everything up to the next clause keyword at the
// same level into a Where group.
func groupWhere(nodes []*token.Node) []*token.Node {
	for i, n := range nodes {
		if !n.Match(token.Keyword, "WHERE") {
			continue
		}
		end := len(nodes)
		for j := i + 1; j < len(nodes); j++ {
			if nodes[j].Match(token.Keyword, whereTerminators...) || nodes[j].Match(token.Punctuation, ";") {
				end = j
				break
			}
		}
		where := token.NewGroup(token.Where, nodes[i:end]...)
		out := append([]*token.Node(nil), nodes[:i]...)
		out = append(out, where)
		return append(out, groupWhere(nodes[end:])...)
	}
	return nodes
}

// skipWhitespace returns the index of the first non-whitespace node at or
// after start.
func skipWhitespace(nodes []*token.Node, start int) int {
	i := start
	for i < len(nodes) && nodes[i].IsWhitespace() {
		i++
	}
	return i
}
