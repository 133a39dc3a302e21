// Package token defines the token tree that lineage extraction consumes.
//
// A tree is produced by a tokenizer (see pkg/sqlparse) and is read-only to
// every consumer. Leaves carry the raw source text; groups carry the
// concatenated text of their children. Nodes have no parent links: code that
// needs to know the enclosing group threads that context down its recursion.
package token

import "fmt"

// Kind classifies a node in the token tree.
type Kind int

// Leaf kinds.
const (
	Keyword Kind = iota
	Name
	Literal
	Operator
	Punctuation
	Wildcard
	Whitespace
	Comment

	// firstGroup marks where group kinds begin.
	firstGroup
)

// Group kinds.
const (
	Identifier Kind = firstGroup + iota
	IdentifierList
	Function
	Parenthesis
	Where
	StatementGroup
)

var kindNames = map[Kind]string{
	Keyword:        "Keyword",
	Name:           "Name",
	Literal:        "Literal",
	Operator:       "Operator",
	Punctuation:    "Punctuation",
	Wildcard:       "Wildcard",
	Whitespace:     "Whitespace",
	Comment:        "Comment",
	Identifier:     "Identifier",
	IdentifierList: "IdentifierList",
	Function:       "Function",
	Parenthesis:    "Parenthesis",
	Where:          "Where",
	StatementGroup: "Statement",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsGroup returns true for kinds that own children.
func (k Kind) IsGroup() bool {
	return k >= firstGroup
}

// Class refines Keyword nodes.
type Class int

// Keyword classes.
const (
	ClassNone Class = iota
	ClassKeyword
	ClassDML
	ClassDDL
	ClassCTE
)

// Position represents a location in the source code.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}
