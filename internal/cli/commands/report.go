package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/bloodline/internal/cli/output"
	"github.com/leapstack-labs/bloodline/internal/lineage"
)

// reportKind selects which lineage a report shows.
type reportKind int

const (
	reportAll reportKind = iota
	reportTables
	reportColumns
)

// TableReport is the data output of the tables command.
type TableReport struct {
	Path       string                 `json:"path" yaml:"path"`
	Statements []lineage.TableLineage `json:"statements" yaml:"statements"`
}

// ColumnReport is the data output of the columns command.
type ColumnReport struct {
	Path       string                  `json:"path" yaml:"path"`
	Statements []lineage.ColumnLineage `json:"statements" yaml:"statements"`
}

func renderFiles(r *output.Renderer, files []lineage.FileLineage, kind reportKind) error {
	if ok, err := r.Data(reportData(files, kind)); ok {
		return err
	}

	for _, f := range files {
		r.Header(1, f.Path)
		shown := 0
		for _, stmt := range f.Statements {
			if !stmt.HasTables() {
				continue
			}
			shown++
			renderStatement(r, stmt, kind)
		}
		if shown == 0 {
			r.Println(r.Muted("No tables found."))
			r.Println("")
		}
	}
	return nil
}

func reportData(files []lineage.FileLineage, kind reportKind) any {
	switch kind {
	case reportTables:
		out := make([]TableReport, 0, len(files))
		for _, f := range files {
			rep := TableReport{Path: f.Path, Statements: []lineage.TableLineage{}}
			for _, s := range f.Statements {
				rep.Statements = append(rep.Statements, s.Tables)
			}
			out = append(out, rep)
		}
		return out
	case reportColumns:
		out := make([]ColumnReport, 0, len(files))
		for _, f := range files {
			rep := ColumnReport{Path: f.Path, Statements: []lineage.ColumnLineage{}}
			for _, s := range f.Statements {
				rep.Statements = append(rep.Statements, s.Columns)
			}
			out = append(out, rep)
		}
		return out
	default:
		return files
	}
}

func renderStatement(r *output.Renderer, stmt lineage.StatementLineage, kind reportKind) {
	r.Header(2, fmt.Sprintf("Statement %d (%s)", stmt.Index+1, stmt.Type))

	if kind != reportColumns {
		renderTableLineage(r, stmt.Tables)
	}
	if kind != reportTables {
		renderColumnLineage(r, stmt)
	}
	if len(stmt.Functions) > 0 {
		r.KeyValue("Functions", strings.Join(stmt.Functions, ", "))
	}
	r.Println("")
}

func renderTableLineage(r *output.Renderer, l lineage.TableLineage) {
	styles := r.Styles()
	if l.Mode == lineage.ModeWrite {
		r.KeyValue("Target", styles.Target.Render(l.Target))
		r.KeyValue("Sources", joinStyled(styles.Table.Render, l.Sources))
		return
	}
	r.KeyValue("Reads", joinStyled(styles.Table.Render, l.Tables))
}

func renderColumnLineage(r *output.Renderer, stmt lineage.StatementLineage) {
	cols := stmt.Columns
	if cols.IsEmpty() {
		r.KeyValue("Columns", r.Muted("none"))
		return
	}

	var rows [][]string
	if cols.Mode == lineage.ModeWrite {
		if cols.Target != nil {
			rows = append(rows, []string{cols.Target.Table, "target", strings.Join(cols.Target.Columns, ", ")})
		}
		for _, src := range cols.Sources {
			rows = append(rows, []string{src.Table, "source", strings.Join(src.Columns, ", ")})
		}
	} else {
		for i := 0; i < len(cols.Columns) && i < len(stmt.TableNames); i++ {
			if len(cols.Columns[i]) == 0 {
				continue
			}
			rows = append(rows, []string{stmt.TableNames[i], "read", strings.Join(cols.Columns[i], ", ")})
		}
	}
	r.Table([]string{"Table", "Role", "Columns"}, rows)
}

func joinStyled(render func(...string) string, names []string) string {
	if len(names) == 0 {
		return "-"
	}
	styled := make([]string, len(names))
	for i, n := range names {
		styled[i] = render(n)
	}
	return strings.Join(styled, ", ")
}
