package format

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/bloodline/pkg/token"
)

const indentSize = 2

// Printer writes normalised SQL token by token.
type Printer struct {
	opts        Options
	output      *bytes.Buffer
	depth       int // parenthesis depth
	atLineStart bool
	pendingWS   bool // whitespace was seen and not yet written
	mustBreak   bool // a line comment was written
	caser       cases.Caser
}

func newPrinter(opts Options) *Printer {
	p := &Printer{
		opts:        opts,
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
	// Casers are stateful, so each printer gets its own.
	switch opts.KeywordCase {
	case KeywordUpper:
		p.caser = cases.Upper(language.Und)
	case KeywordLower:
		p.caser = cases.Lower(language.Und)
	}
	return p
}

// String returns the formatted output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), " \n")
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	if !p.opts.Reindent {
		return
	}
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

// token prints one leaf.
func (p *Printer) token(tok *token.Node) {
	switch {
	case tok.IsWhitespace():
		if !p.opts.CollapseWhitespace {
			p.raw(tok.Value)
			return
		}
		p.pendingWS = true
		return
	case tok.IsComment():
		if p.opts.StripComments {
			p.pendingWS = true
			return
		}
	}

	if p.mustBreak {
		if !p.atLineStart {
			p.writeln()
		}
		p.mustBreak = false
		p.pendingWS = false
	}

	if tok.IsKeyword() && p.opts.Reindent && isClauseKeyword(tok) && !p.atLineStart {
		p.writeln()
		p.pendingWS = false
	}

	if tok.Match(token.Punctuation, ")") && p.depth > 0 {
		p.depth--
	}

	if p.pendingWS && !p.atLineStart {
		p.output.WriteByte(' ')
	}
	p.pendingWS = false

	switch {
	case tok.IsKeyword():
		p.write(p.keyword(tok.Value))
	case tok.Match(token.Punctuation, ";") && p.opts.Reindent && p.depth == 0:
		p.write(";")
		p.writeln()
		p.writeln()
	default:
		p.write(tok.Value)
	}

	if tok.Match(token.Punctuation, "(") {
		p.depth++
	}
	if tok.IsComment() && strings.HasPrefix(tok.Value, "--") {
		p.mustBreak = true
	}
}

// raw writes source whitespace unchanged and keeps the line state in sync.
func (p *Printer) raw(s string) {
	if s == "" {
		return
	}
	p.output.WriteString(s)
	p.atLineStart = strings.HasSuffix(s, "\n")
	if p.atLineStart {
		p.mustBreak = false
	}
}

// keyword applies the configured case to a keyword.
func (p *Printer) keyword(s string) string {
	if p.opts.CollapseWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	}
	switch p.opts.KeywordCase {
	case KeywordUpper, KeywordLower:
		return p.caser.String(s)
	}
	return s
}

// clauseKeywords start a new line when reindenting.
var clauseKeywords = []string{
	"SELECT", "FROM", "WHERE", "GROUP BY", "ORDER BY", "HAVING", "LIMIT",
	"UNION", "UNION ALL", "INTERSECT", "EXCEPT", "VALUES", "SET", "WINDOW",
	"RETURNING",
}

func isClauseKeyword(tok *token.Node) bool {
	if tok.Match(token.Keyword, clauseKeywords...) {
		return true
	}
	return strings.HasSuffix(tok.Normalized(), "JOIN")
}
