package lineage

import (
	"strings"

	"github.com/leapstack-labs/bloodline/pkg/token"
)

// tableKeywords open a region of table names. Matched as substrings of the
// normalized keyword so that LEFT JOIN, CROSS JOIN and friends qualify.
var tableKeywords = []string{"FROM", "JOIN", "DESC", "DESCRIBE", "WITH"}

// setOperators close a table region without ending the scan, so the next
// FROM of a compound query is still seen.
var setOperators = []string{"UNION", "INTERSECT", "EXCEPT", "SELECT"}

// writeOperations are the statement types whose first top-level identifier
// names the target table.
var writeOperations = []string{"SELECT", "DROP", "INSERT", "UPDATE", "CREATE"}

// ExtractTables walks node and appends every table name it finds to
// state.TableNames in discovery order.
//
// Within one list of siblings, a table keyword starts a table region and
// identifiers in it are resolved to table names. A set operator or ON closes
// the region; any other keyword, or a bare comma, ends the scan of that list.
// Groups other than identifiers are walked before they are inspected.
func ExtractTables(node *token.Node, state *State) {
	expectingTable := false

	for _, item := range node.Children {
		if item.IsWhitespace() || item.IsComment() {
			continue
		}

		if item.IsGroup() && !isIdentifierLike(item) {
			ExtractTables(item, state)
		}

		if item.IsKeyword() && containsAny(item.Normalized(), tableKeywords) {
			expectingTable = true
			continue
		}

		if !expectingTable {
			continue
		}

		if item.IsKeyword() || item.Match(token.Punctuation, ",") {
			if containsAny(item.Normalized(), setOperators) || item.Match(token.Keyword, "ON") {
				expectingTable = false
				continue
			}
			break
		}

		switch item.Kind {
		case token.Identifier:
			processTableIdentifier(item, state)
		case token.IdentifierList:
			for _, el := range item.Children {
				if isIdentifierLike(el) {
					processTableIdentifier(el, state)
				}
			}
		}
	}
}

// processTableIdentifier resolves ident to a table name. An identifier
// wrapping a parenthesis, such as an aliased subquery, is walked instead.
func processTableIdentifier(ident *token.Node, state *State) {
	if strings.Contains(ident.Value, "(") {
		ExtractTables(ident, state)
		return
	}
	if name, ok := tableName(ident); ok {
		state.TableNames = append(state.TableNames, name)
	}
}

// tableName resolves an identifier to a table name from the shape of its
// children:
//
//	tbl           [tbl]
//	tbl t         [tbl, " ", t]
//	db.tbl        [db, ".", tbl]
//	db.tbl t      [db, ".", tbl, " ", ...]
//	db.tbl.x      [db, ".", tbl, ".", x]
//
// Any other shape yields no name.
func tableName(ident *token.Node) (string, bool) {
	c := ident.Children
	switch {
	case len(c) == 1:
		return c[0].Value, true
	case len(c) == 3 && isSpace(c[1]):
		return c[0].Value, true
	case len(c) >= 3 && isDot(c[1]):
		name := c[0].Value + "." + c[2].Value
		if len(c) == 3 || isSpace(c[3]) {
			return name, true
		}
		if len(c) >= 5 {
			return name + "." + c[4].Value, true
		}
	}
	return "", false
}

// resolveTarget prepends the write target of stmt to state.TableNames. The
// target is the first Identifier among the statement's direct children.
//
// SELECT counts as a write operation here, so the first selected column of
// a plain SELECT becomes its first table name.
func resolveTarget(stmt *token.Statement, state *State) {
	if !containsAny(stmt.Type(), writeOperations) {
		return
	}
	for _, child := range stmt.Children {
		if child.Kind != token.Identifier {
			continue
		}
		if name, ok := tableName(child); ok {
			state.TableNames = append([]string{name}, state.TableNames...)
		}
		return
	}
}

// TableLineageOf runs target resolution and the table walk on stmt and
// shapes the result. state should be freshly reset.
func TableLineageOf(stmt *token.Statement, state *State) TableLineage {
	typ := stmt.Type()
	resolveTarget(stmt, state)
	ExtractTables(stmt.Node, state)

	res := TableLineage{StatementType: typ, Mode: ModeRead}
	if len(state.TableNames) == 0 {
		return res
	}
	if typ != "SELECT" {
		res.Mode = ModeWrite
		res.Target = state.TableNames[0]
		res.Sources = NewSet(state.TableNames[1:]...).Sorted()
		return res
	}
	res.Tables = state.Tables()
	return res
}

func isIdentifierLike(n *token.Node) bool {
	return n.Kind == token.Identifier || n.Kind == token.IdentifierList
}

func isSpace(n *token.Node) bool {
	return n.Value == " "
}

func isDot(n *token.Node) bool {
	return n.Value == "."
}

func containsAny(s string, subs []string) bool {
	upper := strings.ToUpper(s)
	for _, sub := range subs {
		if strings.Contains(upper, sub) {
			return true
		}
	}
	return false
}
