package lineage

// Clean removes alias names from every column set of state. It must run
// after ExtractColumns and before the column sets are published. Running it
// again has no effect.
func Clean(state *State) {
	for i, cols := range state.ColumnNames {
		state.ColumnNames[i] = cols.Minus(state.AliasNames)
	}
}
