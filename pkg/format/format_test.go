package format

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQL_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select",
			input:    "select  a,\tb from t1 t;",
			expected: "SELECT a, b\nFROM t1 t",
		},
		{
			name:  "subquery",
			input: "select x from (select a from t) sub",
			expected: `SELECT x
FROM (
  SELECT a
  FROM t) sub`,
		},
		{
			name:     "compound join keyword",
			input:    "select a from t1 left   outer join t2 on t1.id = t2.id",
			expected: "SELECT a\nFROM t1\nLEFT OUTER JOIN t2 ON t1.id = t2.id",
		},
		{
			name:     "line comment keeps its line",
			input:    "select a -- note\nfrom t",
			expected: "SELECT a -- note\nFROM t",
		},
		{
			name:     "string literal untouched",
			input:    "select 'from x' from t",
			expected: "SELECT 'from x'\nFROM t",
		},
		{
			name:     "multiple statements",
			input:    "select 1; select 2;",
			expected: "SELECT 1;\n\nSELECT 2",
		},
		{
			name:     "insert select",
			input:    "insert into t1 select a from t2",
			expected: "INSERT INTO t1\nSELECT a\nFROM t2",
		},
		{
			name:     "empty",
			input:    "  ;\n",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SQL(tt.input, DefaultOptions()))
		})
	}
}

func TestSQL_Options(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:     "lower case without reindent",
			input:    "SELECT a\n\nFROM   t;",
			opts:     Options{KeywordCase: KeywordLower, CollapseWhitespace: true},
			expected: "select a from t;",
		},
		{
			name:     "preserve everything",
			input:    "Select  a\nFrom t",
			opts:     Options{KeywordCase: KeywordPreserve},
			expected: "Select  a\nFrom t",
		},
		{
			name:     "strip comments",
			input:    "select a /* c */ from t",
			opts:     Options{KeywordCase: KeywordUpper, CollapseWhitespace: true, StripComments: true, Reindent: true},
			expected: "SELECT a\nFROM t",
		},
		{
			name:  "indent prefix",
			input: "select a from t",
			opts: Options{
				KeywordCase:        KeywordUpper,
				CollapseWhitespace: true,
				Reindent:           true,
				TrimSemicolon:      true,
				Indent:             "  ",
			},
			expected: "  SELECT a\n  FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SQL(tt.input, tt.opts))
		})
	}
}

func TestSQL_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "SELECT a\nFROM t", SQL("select a from t", DefaultOptions()))
		}()
	}
	wg.Wait()
}
