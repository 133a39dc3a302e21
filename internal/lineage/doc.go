// Package lineage derives table and column lineage from a grouped SQL token
// tree.
//
// Extraction is a pair of recursive walks over a token.Statement. The table
// walk collects table names in discovery order; when the statement writes,
// the first of them is the target. The column walk then collects one column
// set per table, using the number of SELECT keywords seen so far as the
// index of the table a column belongs to. Finally alias names are subtracted
// from every column set.
//
// The walks match identifiers by the shape of their children rather than by
// SQL grammar, so unfamiliar dialect constructs are skipped instead of
// failing. Nothing in this package returns an error for SQL it does not
// understand; an empty result means nothing was found.
//
// # Basic Usage
//
//	a := lineage.NewAnalyzer(nil)
//	for _, stmt := range sqlparse.Parse(sql) {
//	    res := a.Analyze(stmt)
//	    fmt.Println(res.Tables.Target, res.Tables.Sources)
//	}
//
// An Analyzer owns a State and is not safe for concurrent use. Use one per
// goroutine, as AnalyzeFiles does.
package lineage
