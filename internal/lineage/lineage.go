package lineage

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/bloodline/pkg/token"
)

// Mode tells whether a lineage result maps a target to its sources or just
// lists what a query reads.
type Mode int

const (
	// ModeRead is used for SELECT statements and for empty results.
	ModeRead Mode = iota
	// ModeWrite is used for every other statement type.
	ModeWrite
)

// String returns "read" or "write".
func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "read":
		*m = ModeRead
	case "write":
		*m = ModeWrite
	default:
		return fmt.Errorf("unknown lineage mode %q", b)
	}
	return nil
}

// TableLineage is the table-level lineage of one statement.
type TableLineage struct {
	StatementType string   `json:"statement_type" yaml:"statement_type"`
	Mode          Mode     `json:"mode" yaml:"mode"`
	Target        string   `json:"target,omitempty" yaml:"target,omitempty"`   // ModeWrite
	Sources       []string `json:"sources,omitempty" yaml:"sources,omitempty"` // ModeWrite, sorted
	Tables        []string `json:"tables,omitempty" yaml:"tables,omitempty"`   // ModeRead, sorted
}

// IsEmpty returns true if no table was found.
func (l TableLineage) IsEmpty() bool {
	return l.Target == "" && len(l.Sources) == 0 && len(l.Tables) == 0
}

// TableColumns pairs a table with the columns attributed to it.
type TableColumns struct {
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`
}

// ColumnLineage is the column-level lineage of one statement.
type ColumnLineage struct {
	StatementType string         `json:"statement_type" yaml:"statement_type"`
	Mode          Mode           `json:"mode" yaml:"mode"`
	Target        *TableColumns  `json:"target,omitempty" yaml:"target,omitempty"`   // ModeWrite
	Sources       []TableColumns `json:"sources,omitempty" yaml:"sources,omitempty"` // ModeWrite
	Columns       [][]string     `json:"columns,omitempty" yaml:"columns,omitempty"` // ModeRead, aligned with the table names
}

// IsEmpty returns true if no column was found.
func (l ColumnLineage) IsEmpty() bool {
	return l.Target == nil && len(l.Sources) == 0 && len(l.Columns) == 0
}

// ColumnLineageOf runs column extraction and alias cleaning on stmt and
// shapes the result. TableLineageOf must have run on the same state first.
func ColumnLineageOf(stmt *token.Statement, state *State) ColumnLineage {
	typ := stmt.Type()
	res := ColumnLineage{StatementType: typ, Mode: ModeRead}
	if len(state.TableNames) == 0 {
		return res
	}

	state.InitColumns()
	ExtractColumns(stmt.Node, state)
	Clean(state)

	pairs := min(len(state.TableNames), len(state.ColumnNames))
	found := false
	for i := 0; i < pairs; i++ {
		if state.ColumnNames[i].Len() > 0 {
			found = true
			break
		}
	}
	if !found {
		return res
	}

	if typ == "SELECT" {
		res.Columns = state.Columns()
		return res
	}

	res.Mode = ModeWrite
	res.Target = &TableColumns{
		Table:   state.TableNames[0],
		Columns: state.ColumnNames[0].Sorted(),
	}
	for i := 1; i < pairs; i++ {
		res.Sources = append(res.Sources, TableColumns{
			Table:   state.TableNames[i],
			Columns: state.ColumnNames[i].Sorted(),
		})
	}
	return res
}

// StatementLineage is the full analysis of one statement.
type StatementLineage struct {
	Index     int           `json:"index" yaml:"index"` // position in its script, 0-based
	SQL       string        `json:"sql" yaml:"sql"`
	Type      string        `json:"type" yaml:"type"`
	Tables    TableLineage  `json:"tables" yaml:"tables"`
	Columns   ColumnLineage `json:"columns" yaml:"columns"`
	Functions []string      `json:"functions,omitempty" yaml:"functions,omitempty"`

	// TableNames and ColumnNames snapshot the raw state for diagram
	// builders: table names in discovery order, duplicates kept, and one
	// sorted column list per table name.
	TableNames  []string   `json:"table_names,omitempty" yaml:"table_names,omitempty"`
	ColumnNames [][]string `json:"column_names,omitempty" yaml:"column_names,omitempty"`
}

// HasTables returns true if the statement references at least one table.
func (l *StatementLineage) HasTables() bool {
	return len(l.TableNames) > 0
}

// Analyzer runs table and column lineage over statements, one at a time,
// with a State it owns. It is not safe for concurrent use.
type Analyzer struct {
	state  *State
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger discards output.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{state: NewState(), logger: logger}
}

// Reset clears the analyzer's state.
func (a *Analyzer) Reset() {
	a.state.Reset()
}

// State returns the state left by the last analysis. Callers must not
// modify it.
func (a *Analyzer) State() *State {
	return a.state
}

// AnalyzeTables runs table lineage on stmt. The state is not reset first;
// call Reset between statements or use Analyze.
func (a *Analyzer) AnalyzeTables(stmt *token.Statement) TableLineage {
	res := TableLineageOf(stmt, a.state)
	a.logger.Debug("extracted tables",
		"type", res.StatementType,
		"mode", res.Mode.String(),
		"tables", len(a.state.TableNames))
	return res
}

// AnalyzeColumns runs column lineage on stmt. AnalyzeTables must have run
// on the same statement first.
func (a *Analyzer) AnalyzeColumns(stmt *token.Statement) ColumnLineage {
	res := ColumnLineageOf(stmt, a.state)
	a.logger.Debug("extracted columns",
		"type", res.StatementType,
		"select_rank", a.state.SelectRank,
		"aliases", a.state.AliasNames.Len(),
		"functions", a.state.FunctionNames.Len())
	return res
}

// Analyze resets the state and runs table and column lineage on stmt.
func (a *Analyzer) Analyze(stmt *token.Statement) StatementLineage {
	a.Reset()
	tables := a.AnalyzeTables(stmt)
	columns := a.AnalyzeColumns(stmt)

	return StatementLineage{
		SQL:         stmt.String(),
		Type:        stmt.Type(),
		Tables:      tables,
		Columns:     columns,
		Functions:   a.state.FunctionNames.Sorted(),
		TableNames:  append([]string(nil), a.state.TableNames...),
		ColumnNames: a.state.Columns(),
	}
}
