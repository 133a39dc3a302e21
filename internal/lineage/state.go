package lineage

import "sort"

// Set is an unordered set of names.
type Set map[string]struct{}

// NewSet returns a set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of elements.
func (s Set) Len() int {
	return len(s)
}

// Minus returns a new set with the elements of s that are not in other.
func (s Set) Minus(other Set) Set {
	out := make(Set, len(s))
	for n := range s {
		if !other.Has(n) {
			out.Add(n)
		}
	}
	return out
}

// Sorted returns the elements in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// State accumulates the extraction results of one statement.
//
// A State must be Reset before it is used for the next statement; the
// extractors only ever add to it. TableNames keeps discovery order and may
// hold duplicates. Once InitColumns has run, ColumnNames[i] holds the
// columns attributed to TableNames[i].
type State struct {
	TableNames    []string
	ColumnNames   []Set
	FunctionNames Set
	AliasNames    Set

	// SelectRank counts SELECT keywords seen by the column walk. It is a
	// 1-based index into ColumnNames.
	SelectRank int
}

// NewState returns an empty State.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset clears every accumulator.
func (s *State) Reset() {
	s.TableNames = nil
	s.ColumnNames = nil
	s.FunctionNames = NewSet()
	s.AliasNames = NewSet()
	s.SelectRank = 0
}

// InitColumns sizes ColumnNames to one empty set per table name.
func (s *State) InitColumns() {
	s.ColumnNames = make([]Set, len(s.TableNames))
	for i := range s.ColumnNames {
		s.ColumnNames[i] = NewSet()
	}
}

// addColumn attributes name to the table at the current select rank.
// Columns seen before the first SELECT, or past the last table, are dropped.
func (s *State) addColumn(name string) {
	if s.SelectRank <= 0 || s.SelectRank > len(s.ColumnNames) {
		return
	}
	s.ColumnNames[s.SelectRank-1].Add(name)
}

// Tables returns the distinct table names in ascending order.
func (s *State) Tables() []string {
	return NewSet(s.TableNames...).Sorted()
}

// Columns returns ColumnNames as sorted slices.
func (s *State) Columns() [][]string {
	out := make([][]string, len(s.ColumnNames))
	for i, cols := range s.ColumnNames {
		out[i] = cols.Sorted()
	}
	return out
}
