package lineage

import (
	"github.com/leapstack-labs/bloodline/pkg/token"
)

// columnShape classifies an identifier for the column walk by the number
// and kind of its children.
type columnShape int

const (
	shapeOther columnShape = iota

	// shapeBare is a single name: a
	shapeBare

	// shapeAliasedName is a name with an explicit alias: a AS b
	shapeAliasedName

	// shapeQualifiedAlias is a qualified name with an explicit alias:
	// t.a AS b. Its leading part is a table alias.
	shapeQualifiedAlias
)

func columnShapeOf(ident *token.Node) columnShape {
	c := ident.Children
	switch {
	case len(c) == 1:
		return shapeBare
	case len(c) == 5 && c[0].Kind == token.Name:
		return shapeAliasedName
	case len(c) == 7:
		return shapeQualifiedAlias
	}
	return shapeOther
}

// ExtractColumns walks node and attributes the columns it finds to the
// tables in state.
//
// Every SELECT keyword, at any depth, bumps state.SelectRank, and a column
// found afterwards is added to state.ColumnNames[SelectRank-1]. The n-th
// SELECT is thereby assumed to read from the n-th table found by
// ExtractTables. That holds for INSERT ... SELECT and simple nesting but not
// for arbitrary subqueries.
//
// state.InitColumns must have run after table extraction.
func ExtractColumns(node *token.Node, state *State) {
	extractColumns(node, state, false)
}

// extractColumns walks the children of node. inFunction is set when node is
// a Function, so a bare identifier directly below it is the function name.
func extractColumns(node *token.Node, state *State, inFunction bool) {
	for _, item := range node.Children {
		if item.IsWhitespace() || item.IsComment() {
			continue
		}

		if item.IsGroup() && !isIdentifierLike(item) {
			extractColumns(item, state, item.Kind == token.Function)
		}

		if item.Match(token.Keyword, "SELECT") {
			state.SelectRank++
		}

		switch item.Kind {
		case token.Identifier:
			processColumnIdentifier(item, state, inFunction)
		case token.IdentifierList:
			for _, el := range item.Children {
				switch el.Kind {
				case token.Function:
					processFunction(el, state)
				case token.Identifier:
					processColumnIdentifier(el, state, false)
				}
			}
		}
	}
}

// processColumnIdentifier records what ident names, then walks inside it.
func processColumnIdentifier(ident *token.Node, state *State, inFunction bool) {
	switch columnShapeOf(ident) {
	case shapeBare:
		if inFunction {
			state.FunctionNames.Add(ident.Value)
		} else {
			state.addColumn(ident.Children[0].Value)
		}
	case shapeAliasedName:
		state.addColumn(ident.Children[0].Value)
	case shapeQualifiedAlias:
		state.AliasNames.Add(ident.Children[0].Value)
	}
	walkIdentifier(ident, state)
}

// walkIdentifier looks inside an identifier. Function calls and subqueries
// are walked as usual. An identifier nested in an identifier is always its
// alias, explicit or implicit, and is recorded as one.
func walkIdentifier(ident *token.Node, state *State) {
	for _, c := range ident.Children {
		switch {
		case c.Kind == token.Identifier:
			state.AliasNames.Add(c.Value)
		case c.IsGroup() && c.Kind != token.IdentifierList:
			extractColumns(c, state, c.Kind == token.Function)
		}
	}
}

// processFunction handles a function call inside an identifier list: the
// name goes to state.FunctionNames and the arguments are walked for columns.
func processFunction(fn *token.Node, state *State) {
	for _, c := range fn.Children {
		if c.Kind == token.Identifier {
			state.FunctionNames.Add(c.Value)
		}
		extractColumns(c, state, false)
	}
}
