package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bloodline/pkg/token"
)

// =============================================================================
// Test Helpers
// =============================================================================

// significant returns the children of n that are not whitespace or comments.
func significant(n *token.Node) []*token.Node {
	var out []*token.Node
	for _, c := range n.Children {
		if c.IsWhitespace() || c.IsComment() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func kindsOf(nodes []*token.Node) []token.Kind {
	kinds := make([]token.Kind, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Kind
	}
	return kinds
}

func mustParseOne(t *testing.T, sql string) *token.Statement {
	t.Helper()
	stmt := ParseOne(sql)
	require.NotNil(t, stmt, "expected a statement for %q", sql)
	return stmt
}

// =============================================================================
// Lexer
// =============================================================================

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kinds  []token.Kind
		values []string
	}{
		{
			name:   "keywords names and whitespace",
			input:  "SELECT a",
			kinds:  []token.Kind{token.Keyword, token.Whitespace, token.Name},
			values: []string{"SELECT", " ", "a"},
		},
		{
			name:   "one whitespace token per character",
			input:  "a  \nb",
			kinds:  []token.Kind{token.Name, token.Whitespace, token.Whitespace, token.Whitespace, token.Name},
			values: []string{"a", " ", " ", "\n", "b"},
		},
		{
			name:   "compound join keyword",
			input:  "left outer join t",
			kinds:  []token.Kind{token.Keyword, token.Whitespace, token.Name},
			values: []string{"left outer join", " ", "t"},
		},
		{
			name:   "group by and union all",
			input:  "GROUP BY UNION ALL",
			kinds:  []token.Kind{token.Keyword, token.Whitespace, token.Keyword},
			values: []string{"GROUP BY", " ", "UNION ALL"},
		},
		{
			name:   "strings and quoted names",
			input:  `'it''s' "my col" ` + "`x`",
			kinds:  []token.Kind{token.Literal, token.Whitespace, token.Name, token.Whitespace, token.Name},
			values: []string{"'it''s'", " ", `"my col"`, " ", "`x`"},
		},
		{
			name:   "comments",
			input:  "-- note\n/* block */",
			kinds:  []token.Kind{token.Comment, token.Whitespace, token.Comment},
			values: []string{"-- note", "\n", "/* block */"},
		},
		{
			name:   "numbers and operators",
			input:  "1.5e3>=2",
			kinds:  []token.Kind{token.Literal, token.Operator, token.Literal},
			values: []string{"1.5e3", ">=", "2"},
		},
		{
			name:   "punctuation and wildcard",
			input:  "t.*,(;)",
			kinds:  []token.Kind{token.Name, token.Punctuation, token.Wildcard, token.Punctuation, token.Punctuation, token.Punctuation, token.Punctuation},
			values: []string{"t", ".", "*", ",", "(", ";", ")"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.Len(t, toks, len(tt.kinds))
			for i, tok := range toks {
				assert.Equal(t, tt.kinds[i], tok.Kind, "token %d (%q)", i, tok.Value)
				assert.Equal(t, tt.values[i], tok.Value, "token %d", i)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	toks := Tokenize("SELECT\n  a")
	last := toks[len(toks)-1]
	assert.Equal(t, "a", last.Value)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 9}, last.Pos)
}

func TestTokenizeRoundTrip(t *testing.T) {
	input := "select  t.a as x, count(*) from db.t -- tail\nwhere x <> 'y;z';"
	var got string
	for _, tok := range Tokenize(input) {
		got += tok.Value
	}
	assert.Equal(t, input, got)
}

// =============================================================================
// Statement splitting
// =============================================================================

func TestParseSplitsStatements(t *testing.T) {
	stmts := Parse("SELECT 1; INSERT INTO t SELECT ';' FROM s;\n\n  ;")
	require.Len(t, stmts, 2)
	assert.Equal(t, "SELECT", stmts[0].Type())
	assert.Equal(t, "INSERT", stmts[1].Type())
	assert.Equal(t, "SELECT 1;", stmts[0].String())
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("  -- only a comment\n"))
	assert.Nil(t, ParseOne(" ; "))
}

// =============================================================================
// Grouping
// =============================================================================

func TestGroupBareAndAliasedTables(t *testing.T) {
	stmt := mustParseOne(t, "SELECT a FROM tbl1 t1")
	top := significant(stmt.Node)
	require.Equal(t, []token.Kind{token.Keyword, token.Identifier, token.Keyword, token.Identifier}, kindsOf(top))

	assert.Equal(t, 1, top[1].Len())

	aliased := top[3]
	require.Equal(t, 3, aliased.Len())
	assert.Equal(t, "tbl1", aliased.Child(0).Value)
	assert.Equal(t, " ", aliased.Child(1).Value)
	assert.Equal(t, token.Identifier, aliased.Child(2).Kind)
	assert.Equal(t, "t1", aliased.Child(2).Value)
}

func TestGroupDottedNames(t *testing.T) {
	tests := []struct {
		sql      string
		children []string
	}{
		{"SELECT a FROM db1.tbl1", []string{"db1", ".", "tbl1"}},
		{"SELECT a FROM db1.tbl1 t", []string{"db1", ".", "tbl1", " ", "t"}},
		{"SELECT a FROM db.sch.tbl", []string{"db", ".", "sch", ".", "tbl"}},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			stmt := mustParseOne(t, tt.sql)
			top := significant(stmt.Node)
			ident := top[len(top)-1]
			require.Equal(t, token.Identifier, ident.Kind)
			var got []string
			for _, c := range ident.Children {
				got = append(got, c.Value)
			}
			assert.Equal(t, tt.children, got)
		})
	}
}

func TestGroupColumnAliases(t *testing.T) {
	stmt := mustParseOne(t, "SELECT a AS b, t.c AS d, count(x) AS n FROM t")
	top := significant(stmt.Node)
	list := top[1]
	require.Equal(t, token.IdentifierList, list.Kind)

	items := []*token.Node{}
	for _, c := range list.Children {
		if c.Kind == token.Identifier {
			items = append(items, c)
		}
	}
	require.Len(t, items, 3)

	assert.Equal(t, 5, items[0].Len(), "a AS b")
	assert.Equal(t, token.Name, items[0].Child(0).Kind)

	assert.Equal(t, 7, items[1].Len(), "t.c AS d")
	assert.Equal(t, "t", items[1].Child(0).Value)

	assert.Equal(t, 5, items[2].Len(), "count(x) AS n")
	assert.Equal(t, token.Function, items[2].Child(0).Kind)
}

func TestGroupFunction(t *testing.T) {
	stmt := mustParseOne(t, "SELECT max(price) FROM t")
	top := significant(stmt.Node)
	fn := top[1]
	require.Equal(t, token.Function, fn.Kind)
	require.Equal(t, 2, fn.Len())
	assert.Equal(t, token.Identifier, fn.Child(0).Kind)
	assert.Equal(t, "max", fn.Child(0).Value)
	assert.Equal(t, token.Parenthesis, fn.Child(1).Kind)
	assert.Equal(t, "(price)", fn.Child(1).Value)
}

func TestGroupIdentifierList(t *testing.T) {
	stmt := mustParseOne(t, "INSERT INTO t1 SELECT a, b FROM t2, t3")
	top := significant(stmt.Node)
	require.Equal(t, []token.Kind{
		token.Keyword, token.Keyword, token.Identifier, token.Keyword,
		token.IdentifierList, token.Keyword, token.IdentifierList,
	}, kindsOf(top))
	assert.Equal(t, "t2, t3", top[6].Value)
}

func TestGroupWhere(t *testing.T) {
	stmt := mustParseOne(t, "SELECT a FROM t1 WHERE id IN (SELECT id FROM t2) ORDER BY a")
	top := significant(stmt.Node)
	require.Equal(t, []token.Kind{
		token.Keyword, token.Identifier, token.Keyword, token.Identifier,
		token.Where, token.Keyword, token.Identifier,
	}, kindsOf(top))

	where := top[4]
	inner := significant(where)
	assert.Equal(t, token.Parenthesis, inner[len(inner)-1].Kind)
}

func TestGroupSubqueryAlias(t *testing.T) {
	stmt := mustParseOne(t, "SELECT x FROM (SELECT a AS x FROM src) sub")
	top := significant(stmt.Node)
	ident := top[len(top)-1]
	require.Equal(t, token.Identifier, ident.Kind)
	assert.Equal(t, token.Parenthesis, ident.Child(0).Kind)
	assert.Contains(t, ident.Value, "(")
}

func TestGroupCTE(t *testing.T) {
	stmt := mustParseOne(t, "WITH x AS (SELECT a FROM t) SELECT a FROM x")
	assert.Equal(t, "SELECT", stmt.Type())

	top := significant(stmt.Node)
	cte := top[1]
	require.Equal(t, token.Identifier, cte.Kind)
	assert.Equal(t, token.Parenthesis, cte.Child(cte.Len()-1).Kind)
}

func TestGroupJoinOn(t *testing.T) {
	stmt := mustParseOne(t, "SELECT x, y FROM t1 LEFT JOIN t2 ON t1.id = t2.id")
	top := significant(stmt.Node)
	require.Equal(t, []token.Kind{
		token.Keyword, token.IdentifierList, token.Keyword, token.Identifier,
		token.Keyword, token.Identifier, token.Keyword, token.Identifier,
		token.Operator, token.Identifier,
	}, kindsOf(top))
	assert.Equal(t, "LEFT JOIN", top[4].Normalized())
}

func TestGroupUnbalancedParenthesis(t *testing.T) {
	assert.NotPanics(t, func() {
		stmt := mustParseOne(t, "SELECT (a FROM t")
		assert.Equal(t, "SELECT (a FROM t", stmt.String())
	})
	assert.NotPanics(t, func() {
		stmt := mustParseOne(t, "SELECT a) FROM t")
		assert.Equal(t, "SELECT a) FROM t", stmt.String())
	})
}
