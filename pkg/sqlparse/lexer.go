package sqlparse

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/bloodline/pkg/token"
)

// compoundKeywords are multi-word keywords lexed as a single Keyword token.
// Keeping them whole matters to lineage extraction: a bare LEFT would end the
// table region of a FROM clause.
var compoundKeywords = []*regexp.Regexp{
	regexp.MustCompile(`^(?i)((LEFT|RIGHT|FULL)\s+)?((INNER|OUTER)\s+)?((CROSS|NATURAL)\s+)?JOIN\b`),
	regexp.MustCompile(`^(?i)(GROUP|ORDER|PARTITION)\s+BY\b`),
	regexp.MustCompile(`^(?i)UNION\s+ALL\b`),
	regexp.MustCompile(`^(?i)INSERT\s+OVERWRITE\b`),
}

// Lexer tokenizes SQL input into token leaves.
//
// Unlike a lexer feeding a parser, it keeps whitespace and comments: every
// whitespace character becomes its own Whitespace leaf so the tree keeps the
// exact shape the lineage heuristics match against.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// advance moves forward n bytes.
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		l.readChar()
	}
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// Next returns the next token leaf, or nil at end of input.
func (l *Lexer) Next() *token.Node {
	if l.pos >= len(l.input) {
		return nil
	}

	pos := l.currentPos()
	start := l.pos
	var kind token.Kind

	switch {
	case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
		kind = token.Whitespace
		l.readChar()
	case l.ch == '-' && l.peekChar() == '-':
		kind = token.Comment
		l.skipLineComment()
	case l.ch == '/' && l.peekChar() == '*':
		kind = token.Comment
		l.skipBlockComment()
	case l.ch == '\'':
		kind = token.Literal
		l.skipQuoted('\'', '\'')
	case l.ch == '"':
		kind = token.Name
		l.skipQuoted('"', '"')
	case l.ch == '`':
		kind = token.Name
		l.skipQuoted('`', '`')
	case l.ch == '[':
		kind = token.Name
		l.skipQuoted('[', ']')
	case isDigit(l.ch):
		kind = token.Literal
		l.readNumber()
	case isWordStart(l.ch):
		if n := l.matchCompound(); n > 0 {
			l.advance(n)
			return l.leaf(token.Keyword, start, pos)
		}
		l.readWord()
		word := l.input[start:l.pos]
		if _, ok := token.LookupKeyword(word); ok {
			kind = token.Keyword
		} else {
			kind = token.Name
		}
	case l.ch == '*':
		kind = token.Wildcard
		l.readChar()
	case l.ch == '.' || l.ch == ',' || l.ch == ';' || l.ch == '(' || l.ch == ')':
		kind = token.Punctuation
		l.readChar()
	case isOperatorChar(l.ch):
		kind = token.Operator
		l.readOperator()
	default:
		kind = token.Punctuation
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.advance(size)
	}

	return l.leaf(kind, start, pos)
}

func (l *Lexer) leaf(kind token.Kind, start int, pos token.Position) *token.Node {
	n := token.NewLeaf(kind, l.input[start:l.pos])
	n.Pos = pos
	return n
}

// matchCompound returns the byte length of a compound keyword at the current
// position, or 0.
func (l *Lexer) matchCompound() int {
	rest := l.input[l.pos:]
	for _, re := range compoundKeywords {
		if loc := re.FindStringIndex(rest); loc != nil {
			return loc[1]
		}
	}
	return 0
}

// skipLineComment consumes a line comment up to, not including, the newline.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.pos < len(l.input) {
		l.readChar()
	}
}

// skipBlockComment consumes a block comment including its delimiters.
func (l *Lexer) skipBlockComment() {
	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for l.pos < len(l.input) {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			return
		}
		l.readChar()
	}
}

// skipQuoted consumes a quoted literal or identifier. A doubled closing
// quote is an escape: 'it''s'.
func (l *Lexer) skipQuoted(open, closing byte) {
	l.readChar() // skip opening quote
	for l.pos < len(l.input) {
		if l.ch == closing {
			if closing != ']' && l.peekChar() == closing {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return
		}
		l.readChar()
	}
}

// readWord reads an unquoted identifier or keyword.
func (l *Lexer) readWord() {
	for l.pos < len(l.input) && (isWordStart(l.ch) || isDigit(l.ch) || l.ch == '$') {
		l.readChar()
	}
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() {
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // skip sign
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
}

// readOperator reads one- and two-character operators.
func (l *Lexer) readOperator() {
	first := l.ch
	l.readChar()
	switch {
	case (first == '<' || first == '>' || first == '!') && l.ch == '=':
		l.readChar()
	case first == '<' && l.ch == '>':
		l.readChar()
	case first == '|' && l.ch == '|':
		l.readChar()
	case first == ':' && l.ch == ':':
		l.readChar()
	}
}

// isWordStart returns true if ch can start an unquoted identifier.
func isWordStart(ch byte) bool {
	if ch >= utf8.RuneSelf {
		return true
	}
	return ch == '_' || unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOperatorChar(ch byte) bool {
	switch ch {
	case '+', '-', '/', '%', '=', '<', '>', '!', '|', ':', '&', '^', '~':
		return true
	}
	return false
}

// Tokenize returns all token leaves of the input.
func Tokenize(input string) []*token.Node {
	l := NewLexer(input)
	var tokens []*token.Node
	for {
		tok := l.Next()
		if tok == nil {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
