package lineage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/bloodline/pkg/format"
	"github.com/leapstack-labs/bloodline/pkg/sqlparse"
)

// ScriptOptions configures script analysis.
type ScriptOptions struct {
	// Normalize runs the SQL through format.SQL with format.DefaultOptions
	// before parsing.
	Normalize bool
	// Concurrency bounds the number of files analyzed at once by
	// AnalyzeFiles. Zero or less means one per file.
	Concurrency int
	// Logger receives debug output (optional, uses discard if nil).
	Logger *slog.Logger
}

// FileLineage is the analysis of one SQL file.
type FileLineage struct {
	Path       string             `json:"path" yaml:"path"`
	Statements []StatementLineage `json:"statements" yaml:"statements"`
}

// AnalyzeScript analyzes every statement of sql in order with one Analyzer,
// resetting it between statements. Statements without tables are included;
// use StatementLineage.HasTables to filter them.
func AnalyzeScript(sql string, opts ScriptOptions) []StatementLineage {
	if opts.Normalize {
		sql = format.SQL(sql, format.DefaultOptions())
	}

	a := NewAnalyzer(opts.Logger)
	stmts := sqlparse.Parse(sql)
	results := make([]StatementLineage, 0, len(stmts))
	for i, stmt := range stmts {
		res := a.Analyze(stmt)
		res.Index = i
		results = append(results, res)
	}
	return results
}

// AnalyzeFiles reads and analyzes paths concurrently. Each worker runs its
// own Analyzer. Results are returned in the order of paths. The first read
// error cancels the remaining work.
func AnalyzeFiles(ctx context.Context, paths []string, opts ScriptOptions) ([]FileLineage, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]FileLineage, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path) //nolint:gosec // paths come from the user
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			fileOpts := opts
			fileOpts.Logger = logger.With("path", path)
			results[i] = FileLineage{
				Path:       path,
				Statements: AnalyzeScript(string(data), fileOpts),
			}
			logger.Debug("analyzed file", "path", path, "statements", len(results[i].Statements))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
