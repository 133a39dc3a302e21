package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bloodline/internal/cli/config"
	clitest "github.com/leapstack-labs/bloodline/internal/cli/testutil"
	"github.com/leapstack-labs/bloodline/internal/dag"
	"github.com/leapstack-labs/bloodline/internal/testutil"
)

func pipelineFiles(t *testing.T) []string {
	t.Helper()
	return testutil.WriteSQLFiles(t, map[string]string{
		"01_stg.sql":  "INSERT INTO stg SELECT a FROM raw; INSERT INTO dim SELECT k FROM seed;",
		"02_mart.sql": "INSERT INTO mart SELECT a, k FROM stg JOIN dim ON stg.k = dim.k;",
		"03_rpt.sql":  "INSERT INTO rpt SELECT a FROM mart;",
	})
}

func graphLevelNames(out GraphOutput) [][]string {
	levels := make([][]string, 0, len(out.Levels))
	for _, l := range out.Levels {
		var names []string
		for _, n := range l.Tables {
			names = append(names, n.Name)
		}
		levels = append(levels, names)
	}
	return levels
}

func TestGraph_JSON(t *testing.T) {
	cfg := clitest.NewConfig(t, config.OutputJSON)

	res := clitest.Execute(t, NewGraphCommand(), cfg, "", pipelineFiles(t)...)
	require.NoError(t, res.Err)

	var out GraphOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out))
	assert.Equal(t, 6, out.TotalTables)
	assert.Equal(t, 5, out.TotalEdges)
	assert.Equal(t, [][]string{{"raw", "seed"}, {"dim", "stg"}, {"mart"}, {"rpt"}}, graphLevelNames(out))

	mart := out.Levels[2].Tables[0]
	assert.Equal(t, []string{"dim", "stg"}, mart.Sources)
	assert.Equal(t, []string{"rpt"}, mart.Targets)
}

func TestGraph_TableDepth(t *testing.T) {
	tests := []struct {
		name   string
		depth  string
		levels [][]string
	}{
		{"unlimited", "0", [][]string{{"raw", "seed"}, {"dim", "stg"}, {"mart"}, {"rpt"}}},
		{"depth one", "1", [][]string{{"dim", "stg"}, {"mart"}, {"rpt"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := clitest.NewConfig(t, config.OutputJSON)
			args := append(pipelineFiles(t), "--table", "mart", "--depth", tt.depth)

			res := clitest.Execute(t, NewGraphCommand(), cfg, "", args...)
			require.NoError(t, res.Err)

			var out GraphOutput
			require.NoError(t, json.Unmarshal([]byte(res.Out), &out))
			assert.Equal(t, tt.levels, graphLevelNames(out))
		})
	}
}

func TestGraph_UnknownTable(t *testing.T) {
	cfg := clitest.NewConfig(t, config.OutputJSON)
	args := append(pipelineFiles(t), "--table", "missing")

	res := clitest.Execute(t, NewGraphCommand(), cfg, "", args...)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "table not found: missing")
}

func TestGraph_NoInput(t *testing.T) {
	cfg := clitest.NewConfig(t, config.OutputJSON)

	res := clitest.Execute(t, NewGraphCommand(), cfg, "")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "no input")
}

func TestGraph_Cycle(t *testing.T) {
	files := testutil.WriteSQLFiles(t, map[string]string{
		"cycle.sql": "INSERT INTO a SELECT x FROM b; INSERT INTO b SELECT x FROM a;",
	})
	cfg := clitest.NewConfig(t, config.OutputJSON)

	res := clitest.Execute(t, NewGraphCommand(), cfg, "", files...)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, dag.ErrCycle)
}

func TestGraph_Mermaid(t *testing.T) {
	cfg := clitest.NewConfig(t, config.OutputMarkdown)
	args := append(pipelineFiles(t), "--mermaid")

	res := clitest.Execute(t, NewGraphCommand(), cfg, "", args...)
	require.NoError(t, res.Err)

	clitest.AssertValidMarkdown(t, res.Out)
	assert.Contains(t, res.Out, "```mermaid\nflowchart LR\n")
	assert.Contains(t, res.Out, `["rpt"]`)
}

func TestGraph_Markdown(t *testing.T) {
	cfg := clitest.NewConfig(t, config.OutputMarkdown)

	res := clitest.Execute(t, NewGraphCommand(), cfg, "", pipelineFiles(t)...)
	require.NoError(t, res.Err)

	out := res.Out
	clitest.AssertNoANSI(t, out)
	assert.Contains(t, out, "# Table Graph")
	assert.Contains(t, out, "## Level 0 (Sources)")
	assert.Contains(t, out, "- mart\n  - written from: dim, stg\n  - feeds: rpt")
	assert.Contains(t, out, "**Total Dependencies:** 5")
}

func TestGraph_History(t *testing.T) {
	cfg := clitest.NewConfig(t, config.OutputJSON)
	cfg.Save = true

	saved := testutil.WriteSQLFiles(t, map[string]string{"old.sql": "INSERT INTO raw SELECT a FROM landing;"})
	res := clitest.Execute(t, NewAnalyzeCommand(), cfg, "", saved...)
	require.NoError(t, res.Err)

	cfg.Save = false
	args := append(pipelineFiles(t), "--history")
	res = clitest.Execute(t, NewGraphCommand(), cfg, "", args...)
	require.NoError(t, res.Err)

	var out GraphOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out))
	require.NotEmpty(t, out.Levels)
	assert.Equal(t, []string{"landing", "seed"}, graphLevelNames(out)[0])
	assert.Equal(t, 7, out.TotalTables)
}

func TestWalkWithDepth(t *testing.T) {
	g := dag.NewGraph()
	g.AddDependency("a", "b")
	g.AddDependency("b", "c")
	g.AddDependency("c", "d")

	assert.Equal(t, []string{"b", "c"}, downstreamWithDepth(g, "a", 2))
	assert.Equal(t, []string{"b", "c", "d"}, downstreamWithDepth(g, "a", 0))
	assert.Equal(t, []string{"c"}, upstreamWithDepth(g, "d", 1))
}
