package token

// Unknown is returned by Statement.Type when no operation keyword is found.
const Unknown = "UNKNOWN"

// Statement is the root of one parsed SQL statement.
type Statement struct {
	*Node
}

// NewStatement wraps children in a statement root.
func NewStatement(children ...*Node) *Statement {
	return &Statement{Node: NewGroup(StatementGroup, children...)}
}

// Type returns the normalized operation keyword of the statement
// (SELECT, INSERT, UPDATE, CREATE, DROP, ...) or Unknown.
//
// A leading WITH is skipped in favour of the first DML keyword at the top
// level, and a leading parenthesis is searched for its own operation.
func (s *Statement) Type() string {
	if s == nil || s.Node == nil {
		return Unknown
	}
	return statementType(s.Node)
}

func statementType(n *Node) string {
	first := firstMeaningful(n.Children, 0)
	if first < 0 {
		return Unknown
	}
	tok := n.Children[first]

	switch {
	case tok.IsDMLOrDDL():
		return tok.Normalized()
	case tok.Kind == Keyword && tok.Class == ClassCTE:
		for i := first + 1; i < len(n.Children); i++ {
			c := n.Children[i]
			if c.Kind == Keyword && c.Class == ClassDML {
				return c.Normalized()
			}
		}
		return Unknown
	case tok.Kind == Parenthesis:
		return statementType(tok)
	}
	return Unknown
}

// firstMeaningful returns the index of the first child at or after start
// that is neither whitespace, a comment, nor an opening parenthesis leaf.
func firstMeaningful(children []*Node, start int) int {
	for i := start; i < len(children); i++ {
		c := children[i]
		if c.IsWhitespace() || c.IsComment() || c.Match(Punctuation, "(") {
			continue
		}
		return i
	}
	return -1
}
