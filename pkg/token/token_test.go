package token

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ws() *Node { return NewLeaf(Whitespace, " ") }

func TestKindIsGroup(t *testing.T) {
	for _, k := range []Kind{Keyword, Name, Literal, Operator, Punctuation, Wildcard, Whitespace, Comment} {
		assert.False(t, k.IsGroup(), "%s should be a leaf kind", k)
	}
	for _, k := range []Kind{Identifier, IdentifierList, Function, Parenthesis, Where, StatementGroup} {
		assert.True(t, k.IsGroup(), "%s should be a group kind", k)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "IdentifierList", IdentifierList.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestNewGroupValue(t *testing.T) {
	ident := NewGroup(Identifier, NewLeaf(Name, "db"), NewLeaf(Punctuation, "."), NewLeaf(Name, "tbl"))
	assert.Equal(t, "db.tbl", ident.Value)
	assert.Equal(t, 3, ident.Len())
	assert.Nil(t, ident.Child(3))
}

func TestNewLeafKeywordClass(t *testing.T) {
	assert.Equal(t, ClassDML, NewLeaf(Keyword, "select").Class)
	assert.Equal(t, ClassDDL, NewLeaf(Keyword, "Create").Class)
	assert.Equal(t, ClassCTE, NewLeaf(Keyword, "WITH").Class)
	assert.Equal(t, ClassKeyword, NewLeaf(Keyword, "LEFT JOIN").Class)
	assert.Equal(t, ClassNone, NewLeaf(Name, "users").Class)
}

func TestMatch(t *testing.T) {
	kw := NewLeaf(Keyword, "from")
	assert.True(t, kw.Match(Keyword))
	assert.True(t, kw.Match(Keyword, "FROM"))
	assert.False(t, kw.Match(Keyword, "JOIN"))
	assert.False(t, kw.Match(Name, "from"))
}

func TestStatementType(t *testing.T) {
	tests := []struct {
		name string
		stmt *Statement
		want string
	}{
		{
			name: "select",
			stmt: NewStatement(NewLeaf(Keyword, "select"), ws(), NewLeaf(Literal, "1")),
			want: "SELECT",
		},
		{
			name: "leading comment and whitespace",
			stmt: NewStatement(NewLeaf(Comment, "-- hi\n"), ws(), NewLeaf(Keyword, "INSERT")),
			want: "INSERT",
		},
		{
			name: "with skips to dml",
			stmt: NewStatement(
				NewLeaf(Keyword, "WITH"), ws(),
				NewGroup(Identifier, NewLeaf(Name, "x")), ws(),
				NewLeaf(Keyword, "SELECT"),
			),
			want: "SELECT",
		},
		{
			name: "with without dml",
			stmt: NewStatement(NewLeaf(Keyword, "WITH"), ws(), NewGroup(Identifier, NewLeaf(Name, "x"))),
			want: Unknown,
		},
		{
			name: "parenthesised select",
			stmt: NewStatement(NewGroup(Parenthesis,
				NewLeaf(Punctuation, "("), NewLeaf(Keyword, "SELECT"), NewLeaf(Punctuation, ")"))),
			want: "SELECT",
		},
		{
			name: "empty",
			stmt: NewStatement(),
			want: Unknown,
		},
		{
			name: "not an operation",
			stmt: NewStatement(NewGroup(Identifier, NewLeaf(Name, "foo"))),
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stmt.Type())
		})
	}
}

func TestStatementTypeNil(t *testing.T) {
	var s *Statement
	assert.Equal(t, Unknown, s.Type())
}

func TestRegisterKeyword(t *testing.T) {
	_, ok := LookupKeyword("qualify")
	require.False(t, ok)

	RegisterKeyword("qualify", ClassKeyword)

	class, ok := LookupKeyword("QUALIFY")
	require.True(t, ok)
	assert.Equal(t, ClassKeyword, class)
}

func TestRegisterKeywordConcurrent(t *testing.T) {
	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RegisterKeyword("ilike", ClassKeyword)
			_, _ = LookupKeyword("ilike")
		}()
	}
	wg.Wait()

	_, ok := LookupKeyword("ILIKE")
	assert.True(t, ok)
}

func TestWalk(t *testing.T) {
	root := NewGroup(Parenthesis,
		NewLeaf(Punctuation, "("),
		NewGroup(Identifier, NewLeaf(Name, "a")),
		NewLeaf(Punctuation, ")"),
	)
	var kinds []Kind
	root.Walk(func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != Identifier
	})
	assert.Equal(t, []Kind{Parenthesis, Punctuation, Identifier, Punctuation}, kinds)
}
