package token

import "strings"

// Node is one element of the token tree.
//
// Leaves have no children and Value holds their source text. Groups hold
// their children in source order and Value holds the concatenated text of
// the subtree.
type Node struct {
	Kind     Kind
	Value    string
	Class    Class // set for Keyword nodes only
	Pos      Position
	Children []*Node
}

// NewLeaf creates a leaf node.
func NewLeaf(kind Kind, value string) *Node {
	n := &Node{Kind: kind, Value: value}
	if kind == Keyword {
		// Compound keywords take the class of their first word.
		if words := strings.Fields(value); len(words) > 0 {
			n.Class, _ = LookupKeyword(words[0])
		}
		if n.Class == ClassNone {
			n.Class = ClassKeyword
		}
	}
	return n
}

// NewGroup creates a group node over children and computes its Value.
// The position of a group is the position of its first child.
func NewGroup(kind Kind, children ...*Node) *Node {
	var b strings.Builder
	for _, c := range children {
		b.WriteString(c.Value)
	}
	n := &Node{Kind: kind, Value: b.String(), Children: children}
	if len(children) > 0 {
		n.Pos = children[0].Pos
	}
	return n
}

// IsGroup returns true if the node is a grouping node.
func (n *Node) IsGroup() bool {
	return n.Kind.IsGroup()
}

// IsWhitespace returns true for whitespace leaves.
func (n *Node) IsWhitespace() bool {
	return n.Kind == Whitespace
}

// IsComment returns true for comment leaves.
func (n *Node) IsComment() bool {
	return n.Kind == Comment
}

// IsKeyword returns true for keyword leaves of any class.
func (n *Node) IsKeyword() bool {
	return n.Kind == Keyword
}

// IsDMLOrDDL returns true for keywords that start a data or schema statement.
func (n *Node) IsDMLOrDDL() bool {
	return n.Kind == Keyword && (n.Class == ClassDML || n.Class == ClassDDL)
}

// Normalized returns the upper-cased value for keywords, with the inner
// whitespace of compound keywords collapsed to one space, and the raw value
// for everything else.
func (n *Node) Normalized() string {
	if n.Kind == Keyword {
		return strings.Join(strings.Fields(strings.ToUpper(n.Value)), " ")
	}
	return n.Value
}

// Match returns true if the node has the given kind and, when values are
// provided, its normalized value equals one of them (case-insensitive).
func (n *Node) Match(kind Kind, values ...string) bool {
	if n.Kind != kind {
		return false
	}
	if len(values) == 0 {
		return true
	}
	norm := n.Normalized()
	for _, v := range values {
		if strings.EqualFold(norm, v) {
			return true
		}
	}
	return false
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.Children)
}

// String returns the source text of the subtree.
func (n *Node) String() string {
	return n.Value
}

// Walk calls fn for n and every descendant in depth-first order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
