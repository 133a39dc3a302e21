package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeYAML, false, ModeYAML},
		{ModeText, false, ModeText},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+map[bool]string{true: "tty", false: "pipe"}[tt.isTTY], func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_BufferIsNotTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_Header(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Tables")
	assert.Equal(t, "## Tables\n\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.Header(1, "Tables")
	assert.Equal(t, "Tables\n\n", out.String(), "no styling without a terminal")
}

func TestRenderer_Messages(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)
	r.Success("saved")
	r.Warning("careful")
	r.Error("failed")

	assert.Equal(t, "saved\n", out.String())
	assert.Equal(t, "Warning: careful\nError: failed\n", errOut.String())
}

func TestRenderer_Data(t *testing.T) {
	v := map[string][]string{"tables": {"t1", "t2"}}

	r, out, _ := newTest(ModeJSON, false)
	ok, err := r.Data(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"tables": ["t1", "t2"]}`, out.String())

	r, out, _ = newTest(ModeYAML, false)
	ok, err = r.Data(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tables:\n  - t1\n  - t2\n", out.String())

	r, out, _ = newTest(ModeText, false)
	ok, err = r.Data(v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}

func TestRenderer_Table(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Table([]string{"Table", "Columns"}, [][]string{{"t1", "a, b"}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, strings.ToLower(lines[0]), "table")
	assert.Contains(t, lines[2], "| t1 | a, b |")

	r, out, _ = newTest(ModeText, false)
	r.Table([]string{"Table"}, [][]string{{"t1"}})
	assert.Contains(t, out.String(), "┌")
	assert.Contains(t, out.String(), "t1")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Title", FormatHeader(3, "Title"))
	assert.Equal(t, "**Target:** t1", FormatKeyValue("Target", "t1"))
	assert.Equal(t, "- a\n- b", FormatList([]string{"a", "b"}))
	assert.Equal(t, "- (none)", FormatList(nil))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCode("sql", "SELECT 1\n"))
}

func TestRenderer_KeyValue(t *testing.T) {
	r, out, _ := newTest(ModeText, false)
	r.KeyValue("Target", "t1")
	assert.Equal(t, "Target: t1\n", out.String())

	r, out, _ = newTest(ModeMarkdown, false)
	r.KeyValue("Target", "t1")
	assert.Equal(t, "**Target:** t1\n", out.String())
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, true, ModeText)
	assert.Equal(t, ModeText, r.EffectiveMode())
	assert.Equal(t, "orders", r.Styles().Table.Render("orders"))
	assert.Equal(t, "Title", r.Styles().Header.Render("Title"))
}
