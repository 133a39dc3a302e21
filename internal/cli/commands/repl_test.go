package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	clitest "github.com/leapstack-labs/bloodline/internal/cli/testutil"
	"github.com/leapstack-labs/bloodline/internal/lineage"
)

func newTestSession() (*replSession, *clitest.TestRenderer) {
	tr := clitest.NewTestRendererMarkdown()
	return newREPLSession(tr.Renderer, lineage.ScriptOptions{Normalize: true}), tr
}

func TestREPL_MultiLineStatement(t *testing.T) {
	s, tr := newTestSession()

	prompt, quit := s.handleLine("insert into t1")
	assert.False(t, quit)
	assert.Equal(t, replContinuePrompt, prompt)
	assert.Empty(t, tr.Output())

	prompt, _ = s.handleLine("")
	assert.Equal(t, replContinuePrompt, prompt, "blank lines keep the statement open")

	prompt, _ = s.handleLine("select a from t2;")
	assert.Equal(t, replPrompt, prompt)
	assert.Contains(t, tr.Output(), "## Statement 1 (INSERT)")
	assert.Contains(t, tr.Output(), "**Target:** t1")
	assert.Len(t, s.last, 1)
}

func TestREPL_NoTables(t *testing.T) {
	s, tr := newTestSession()

	s.handleLine("select 1;")
	assert.Contains(t, tr.Output(), "No tables found.")
}

func TestREPL_DotCommands(t *testing.T) {
	s, tr := newTestSession()

	s.handleLine(".tables")
	assert.Contains(t, tr.Output(), "Nothing analyzed yet.")
	tr.Reset()

	s.handleLine("insert into t1 select a, b from t2;")
	tr.Reset()

	tests := []struct {
		line    string
		want    []string
		notWant []string
	}{
		{".tables", []string{"**Target:** t1", "**Sources:** t2"}, []string{"| t1"}},
		{".columns", []string{"| t1"}, []string{"**Target:**"}},
		{".state", []string{"**Table names:** t1, t2", "**Columns[0]:**"}, nil},
		{".help", []string{".normalize [on|off]", ".quit / .exit"}, nil},
		{".normalize", []string{"**Normalize:** true"}, nil},
		{".NORMALIZE off", []string{"**Normalize:** false"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tr.Reset()
			prompt, quit := s.handleLine(tt.line)
			assert.False(t, quit)
			assert.Equal(t, replPrompt, prompt)
			for _, w := range tt.want {
				assert.Contains(t, tr.Output(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, tr.Output(), w)
			}
		})
	}
	assert.False(t, s.opts.Normalize)
}

func TestREPL_DotCommandErrors(t *testing.T) {
	s, tr := newTestSession()

	s.handleLine(".normalize maybe")
	assert.Contains(t, tr.ErrorOutput(), "Usage: .normalize [on|off]")
	assert.True(t, s.opts.Normalize)

	s.handleLine(".bogus")
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .bogus")
}

func TestREPL_Quit(t *testing.T) {
	for _, line := range []string{".quit", ".exit", "  .QUIT  "} {
		s, _ := newTestSession()
		_, quit := s.handleLine(line)
		assert.True(t, quit, "line %q should quit", line)
	}

	// Inside an open statement a dot line is SQL, not a command.
	s, _ := newTestSession()
	s.handleLine("select a")
	_, quit := s.handleLine(".quit")
	assert.False(t, quit)
}
