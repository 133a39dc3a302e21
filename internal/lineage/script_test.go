package lineage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bloodline/internal/testutil"
)

func TestAnalyzeScript(t *testing.T) {
	sql := `
INSERT INTO t1 SELECT a FROM t2;
SELECT 1;
-- trailing comment
SELECT x, y FROM t3 JOIN t4 ON t3.k = t4.k;
`
	results := AnalyzeScript(sql, ScriptOptions{Logger: testutil.NewTestLogger(t)})
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, "t1", results[0].Tables.Target)

	assert.Equal(t, 1, results[1].Index)
	assert.False(t, results[1].HasTables())

	assert.Equal(t, 2, results[2].Index)
	assert.Equal(t, []string{"t3", "t4"}, results[2].Tables.Tables)
}

func TestAnalyzeScript_Normalize(t *testing.T) {
	// The tab between a table and its alias only matches the alias shape
	// once whitespace is collapsed.
	sql := "select a from tbl1\tt1"

	raw := AnalyzeScript(sql, ScriptOptions{})
	require.Len(t, raw, 1)
	assert.NotContains(t, raw[0].TableNames, "tbl1")

	norm := AnalyzeScript(sql, ScriptOptions{Normalize: true})
	require.Len(t, norm, 1)
	assert.Contains(t, norm[0].TableNames, "tbl1")
	assert.Equal(t, "SELECT a\nFROM tbl1 t1", norm[0].SQL)
}

func TestAnalyzeScript_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeScript("", ScriptOptions{}))
	assert.Empty(t, AnalyzeScript(" ;; -- nothing\n", ScriptOptions{}))
}

func TestAnalyzeFiles(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 10; i++ {
		files[fmt.Sprintf("q%02d.sql", i)] = fmt.Sprintf("INSERT INTO out%d SELECT a FROM src%d;", i, i)
	}
	paths := testutil.WriteSQLFiles(t, files)

	results, err := AnalyzeFiles(context.Background(), paths, ScriptOptions{
		Concurrency: 3,
		Logger:      testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
		require.Len(t, res.Statements, 1)
		assert.Equal(t, fmt.Sprintf("out%d", i), res.Statements[0].Tables.Target)
		assert.Equal(t, []string{fmt.Sprintf("src%d", i)}, res.Statements[0].Tables.Sources)
	}
}

func TestAnalyzeFiles_MissingFile(t *testing.T) {
	paths := testutil.WriteSQLFiles(t, map[string]string{"ok.sql": "SELECT a FROM t"})
	missing := filepath.Join(filepath.Dir(paths[0]), "missing.sql")

	_, err := AnalyzeFiles(context.Background(), append(paths, missing), ScriptOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.sql")
}

func TestAnalyzeFiles_Canceled(t *testing.T) {
	paths := testutil.WriteSQLFiles(t, map[string]string{"a.sql": "SELECT a FROM t"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AnalyzeFiles(ctx, paths, ScriptOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
