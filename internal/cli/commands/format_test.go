package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bloodline/internal/cli/config"
	clitest "github.com/leapstack-labs/bloodline/internal/cli/testutil"
	"github.com/leapstack-labs/bloodline/internal/testutil"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		args     []string
		expected string
	}{
		{
			name:     "defaults",
			input:    "insert into t1 select a from t2;",
			expected: "INSERT INTO t1\nSELECT a\nFROM t2\n",
		},
		{
			name:     "lower case on one line",
			input:    "SELECT a\n\nFROM   t;",
			args:     []string{"--keyword-case", "lower", "--no-reindent", "--keep-semicolon"},
			expected: "select a from t;\n",
		},
		{
			name:     "strip comments",
			input:    "select a /* c */ from t",
			args:     []string{"--strip-comments"},
			expected: "SELECT a\nFROM t\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.NewConfig(t, config.OutputText)
			args := append([]string{"-"}, tt.args...)

			res := clitest.Execute(t, NewFormatCommand(), cfg, tt.input, args...)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.expected, res.Out)
		})
	}
}

func TestFormat_File(t *testing.T) {
	path := testutil.WriteSQLFiles(t, map[string]string{"q.sql": "select a from t"})[0]
	cfg := clitest.NewConfig(t, config.OutputMarkdown)

	res := clitest.Execute(t, NewFormatCommand(), cfg, "", path)
	require.NoError(t, res.Err)
	assert.Equal(t, "```sql\nSELECT a\nFROM t\n```\n", res.Out)
}

func TestFormat_Errors(t *testing.T) {
	cfg := clitest.NewConfig(t, config.OutputText)

	res := clitest.Execute(t, NewFormatCommand(), cfg, "select 1", "-", "--keyword-case", "title")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "unknown keyword case")

	res = clitest.Execute(t, NewFormatCommand(), cfg, "", "/does/not/exist.sql")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "failed to read")
}
