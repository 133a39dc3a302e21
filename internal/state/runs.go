package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/bloodline/internal/dag"
	"github.com/leapstack-labs/bloodline/internal/lineage"
)

// timeLayout has a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one saved analysis of a script.
type Run struct {
	ID             string    `json:"id" yaml:"id"`
	Source         string    `json:"source" yaml:"source"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	StatementCount int       `json:"statement_count" yaml:"statement_count"`

	// Statements is only filled by GetRun.
	Statements []lineage.StatementLineage `json:"statements,omitempty" yaml:"statements,omitempty"`
}

// ColumnUse is a column seen on a table in a saved run.
type ColumnUse struct {
	Column string `json:"column" yaml:"column"`
	Role   string `json:"role" yaml:"role"` // "target" or "source"
	Runs   int    `json:"runs" yaml:"runs"`
}

// SaveRun stores the lineage of one script as a new run in a single
// transaction and returns it.
func (s *Store) SaveRun(ctx context.Context, source string, stmts []lineage.StatementLineage) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	run := &Run{
		ID:             generateID(),
		Source:         source,
		CreatedAt:      time.Now().UTC(),
		StatementCount: len(stmts),
	}
	s.logger.Debug("saving run",
		slog.String("id", run.ID),
		slog.String("source", source),
		slog.Int("statements", len(stmts)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, created_at, statement_count) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, run.CreatedAt.Format(timeLayout), run.StatementCount,
	); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for _, stmt := range stmts {
		if err := insertStatement(ctx, tx, run.ID, stmt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

func insertStatement(ctx context.Context, tx *sql.Tx, runID string, stmt lineage.StatementLineage) error {
	data, err := json.Marshal(stmt)
	if err != nil {
		return fmt.Errorf("failed to encode statement %d: %w", stmt.Index, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO statements (run_id, idx, stmt_type, mode, target, sql_text, lineage)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, stmt.Index, stmt.Type, stmt.Tables.Mode.String(), stmt.Tables.Target, stmt.SQL, string(data),
	); err != nil {
		return fmt.Errorf("failed to insert statement %d: %w", stmt.Index, err)
	}

	if stmt.Tables.Mode == lineage.ModeWrite {
		for _, src := range stmt.Tables.Sources {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO table_edges (run_id, stmt_index, source, target) VALUES (?, ?, ?, ?)`,
				runID, stmt.Index, src, stmt.Tables.Target,
			); err != nil {
				return fmt.Errorf("failed to insert table edge: %w", err)
			}
		}
	}

	for _, f := range columnFacts(stmt) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO column_facts (run_id, stmt_index, table_name, column_name, role) VALUES (?, ?, ?, ?, ?)`,
			runID, stmt.Index, f.table, f.column, f.role,
		); err != nil {
			return fmt.Errorf("failed to insert column fact: %w", err)
		}
	}
	return nil
}

type columnFact struct {
	table, column, role string
}

func columnFacts(stmt lineage.StatementLineage) []columnFact {
	var facts []columnFact
	add := func(tc lineage.TableColumns, role string) {
		for _, c := range tc.Columns {
			facts = append(facts, columnFact{table: tc.Table, column: c, role: role})
		}
	}

	cols := stmt.Columns
	if cols.Mode == lineage.ModeWrite {
		if cols.Target != nil {
			add(*cols.Target, "target")
		}
		for _, src := range cols.Sources {
			add(src, "source")
		}
		return facts
	}

	for i := 0; i < len(cols.Columns) && i < len(stmt.TableNames); i++ {
		add(lineage.TableColumns{Table: stmt.TableNames[i], Columns: cols.Columns[i]}, "source")
	}
	return facts
}

// ListRuns returns saved runs, newest first. A limit of zero or less
// returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, created_at, statement_count FROM runs
		 ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its statements in script order.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, created_at, statement_count FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT lineage FROM statements WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get statements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		var stmt lineage.StatementLineage
		if err := json.Unmarshal([]byte(data), &stmt); err != nil {
			return nil, fmt.Errorf("failed to decode statement: %w", err)
		}
		run.Statements = append(run.Statements, stmt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get statements: %w", err)
	}
	return run, nil
}

// DeleteRun removes a run and everything recorded with it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// TableEdges returns every distinct write edge across all runs, sorted by
// source then target.
func (s *Store) TableEdges(ctx context.Context) ([]dag.Edge, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source, target FROM table_edges ORDER BY source, target`)
	if err != nil {
		return nil, fmt.Errorf("failed to query table edges: %w", err)
	}
	defer rows.Close()

	var edges []dag.Edge
	for rows.Next() {
		var e dag.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, fmt.Errorf("failed to scan table edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query table edges: %w", err)
	}
	return edges, nil
}

// TableColumns returns the columns recorded for a table across all runs,
// sorted by role then column.
func (s *Store) TableColumns(ctx context.Context, table string) ([]ColumnUse, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT column_name, role, COUNT(DISTINCT run_id) FROM column_facts
		 WHERE table_name = ?
		 GROUP BY column_name, role
		 ORDER BY role DESC, column_name`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnUse
	for rows.Next() {
		var c ColumnUse
		if err := rows.Scan(&c.Column, &c.Role, &c.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	return cols, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var created string
	if err := row.Scan(&run.ID, &run.Source, &created, &run.StatementCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run time %q: %w", created, err)
	}
	run.CreatedAt = t
	return &run, nil
}
