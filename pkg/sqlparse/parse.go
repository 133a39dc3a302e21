// Package sqlparse splits SQL text into statements and builds the token
// tree consumed by lineage extraction.
//
// The tree is deliberately shallow: it groups parentheses, function calls,
// dotted names, aliases, comma-separated lists and WHERE clauses, and leaves
// everything else as flat leaves. It never fails; text it does not recognise
// ends up as Punctuation or Operator leaves.
//
//	stmts := sqlparse.Parse("INSERT INTO t1 SELECT a FROM t2; SELECT 1")
//	for _, stmt := range stmts {
//	    fmt.Println(stmt.Type())
//	}
package sqlparse

import (
	"github.com/leapstack-labs/bloodline/pkg/token"
)

// Parse splits sql on top-level semicolons and returns one grouped
// statement per non-empty piece. The terminating semicolon stays the last
// child of its statement.
func Parse(sql string) []*token.Statement {
	leaves := Tokenize(sql)

	var stmts []*token.Statement
	var current []*token.Node
	depth := 0

	flush := func() {
		if meaningful(current) {
			stmts = append(stmts, token.NewStatement(group(current)...))
		}
		current = nil
	}

	for _, leaf := range leaves {
		// Whitespace between statements belongs to neither.
		if len(current) == 0 && leaf.IsWhitespace() {
			continue
		}
		current = append(current, leaf)
		switch {
		case leaf.Match(token.Punctuation, "("):
			depth++
		case leaf.Match(token.Punctuation, ")") && depth > 0:
			depth--
		case leaf.Match(token.Punctuation, ";") && depth == 0:
			flush()
		}
	}
	flush()

	return stmts
}

// ParseOne parses sql and returns its first statement, or nil if sql holds
// no statement.
func ParseOne(sql string) *token.Statement {
	stmts := Parse(sql)
	if len(stmts) == 0 {
		return nil
	}
	return stmts[0]
}

// meaningful returns true if nodes hold anything besides whitespace,
// comments and semicolons.
func meaningful(nodes []*token.Node) bool {
	for _, n := range nodes {
		if n.IsWhitespace() || n.IsComment() || n.Match(token.Punctuation, ";") {
			continue
		}
		return true
	}
	return false
}
