// Package format normalises SQL text before lineage analysis.
//
// Normalising makes the token tree more regular: keywords share one case,
// runs of whitespace become a single space and clauses start on their own
// line. The output is still the same SQL; nothing is parsed beyond the
// token level.
package format

import (
	"strings"

	"github.com/leapstack-labs/bloodline/pkg/sqlparse"
)

// KeywordCase selects how keywords are cased.
type KeywordCase int

// Keyword cases.
const (
	KeywordUpper KeywordCase = iota
	KeywordLower
	KeywordPreserve
)

// Options configures SQL.
type Options struct {
	KeywordCase        KeywordCase
	CollapseWhitespace bool
	StripComments      bool
	// Reindent puts every clause on its own line and indents subqueries.
	Reindent bool
	// TrimSemicolon strips surrounding whitespace and semicolons from the
	// result.
	TrimSemicolon bool
	// Indent is prefixed to every non-empty output line.
	Indent string
}

// DefaultOptions returns the options used before analysis: upper-case
// keywords, collapsed whitespace, one clause per line and no trailing
// semicolon.
func DefaultOptions() Options {
	return Options{
		KeywordCase:        KeywordUpper,
		CollapseWhitespace: true,
		Reindent:           true,
		TrimSemicolon:      true,
	}
}

// SQL normalises sql according to opts.
func SQL(sql string, opts Options) string {
	p := newPrinter(opts)
	for _, tok := range sqlparse.Tokenize(sql) {
		p.token(tok)
	}

	out := p.String()
	if opts.TrimSemicolon {
		out = strings.Trim(out, " \t\n;")
	}
	if opts.Indent != "" {
		out = indentLines(out, opts.Indent)
	}
	return out
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
