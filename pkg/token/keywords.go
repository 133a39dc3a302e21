package token

import (
	"strings"
	"sync"
)

// builtinKeywords maps upper-case keyword text to its class.
var builtinKeywords = map[string]Class{
	// DML
	"SELECT":  ClassDML,
	"INSERT":  ClassDML,
	"UPDATE":  ClassDML,
	"DELETE":  ClassDML,
	"MERGE":   ClassDML,
	"REPLACE": ClassDML,
	"UPSERT":  ClassDML,

	// DDL
	"CREATE":   ClassDDL,
	"DROP":     ClassDDL,
	"ALTER":    ClassDDL,
	"TRUNCATE": ClassDDL,

	// CTE
	"WITH": ClassCTE,

	// Plain keywords (alphabetical)
	"ALL":       ClassKeyword,
	"AND":       ClassKeyword,
	"ANY":       ClassKeyword,
	"AS":        ClassKeyword,
	"ASC":       ClassKeyword,
	"BETWEEN":   ClassKeyword,
	"BY":        ClassKeyword,
	"CASCADE":   ClassKeyword,
	"CASE":      ClassKeyword,
	"CAST":      ClassKeyword,
	"COLUMN":    ClassKeyword,
	"CROSS":     ClassKeyword,
	"DATABASE":  ClassKeyword,
	"DEFAULT":   ClassKeyword,
	"DESC":      ClassKeyword,
	"DESCRIBE":  ClassKeyword,
	"DISTINCT":  ClassKeyword,
	"ELSE":      ClassKeyword,
	"END":       ClassKeyword,
	"EXCEPT":    ClassKeyword,
	"EXISTS":    ClassKeyword,
	"FALSE":     ClassKeyword,
	"FETCH":     ClassKeyword,
	"FOR":       ClassKeyword,
	"FROM":      ClassKeyword,
	"FULL":      ClassKeyword,
	"GROUP":     ClassKeyword,
	"HAVING":    ClassKeyword,
	"IF":        ClassKeyword,
	"IN":        ClassKeyword,
	"INDEX":     ClassKeyword,
	"INNER":     ClassKeyword,
	"INTERSECT": ClassKeyword,
	"INTO":      ClassKeyword,
	"IS":        ClassKeyword,
	"JOIN":      ClassKeyword,
	"LATERAL":   ClassKeyword,
	"LEFT":      ClassKeyword,
	"LIKE":      ClassKeyword,
	"LIMIT":     ClassKeyword,
	"NATURAL":   ClassKeyword,
	"NOT":       ClassKeyword,
	"NULL":      ClassKeyword,
	"OFFSET":    ClassKeyword,
	"ON":        ClassKeyword,
	"OR":        ClassKeyword,
	"ORDER":     ClassKeyword,
	"OUTER":     ClassKeyword,
	"OVER":      ClassKeyword,
	"OVERWRITE": ClassKeyword,
	"PARTITION": ClassKeyword,
	"RECURSIVE": ClassKeyword,
	"RETURNING": ClassKeyword,
	"RIGHT":     ClassKeyword,
	"SCHEMA":    ClassKeyword,
	"SET":       ClassKeyword,
	"TABLE":     ClassKeyword,
	"TEMPORARY": ClassKeyword,
	"THEN":      ClassKeyword,
	"TRUE":      ClassKeyword,
	"UNION":     ClassKeyword,
	"USING":     ClassKeyword,
	"VALUES":    ClassKeyword,
	"VIEW":      ClassKeyword,
	"WHEN":      ClassKeyword,
	"WHERE":     ClassKeyword,
	"WINDOW":    ClassKeyword,
}

var (
	registryMu      sync.RWMutex
	dynamicKeywords = make(map[string]Class)
)

// RegisterKeyword adds a dialect keyword to the lookup table.
// Registering a builtin keyword overrides its class.
func RegisterKeyword(word string, class Class) {
	registryMu.Lock()
	defer registryMu.Unlock()
	dynamicKeywords[strings.ToUpper(word)] = class
}

// LookupKeyword reports whether word is a keyword and returns its class.
// The lookup is case-insensitive.
func LookupKeyword(word string) (Class, bool) {
	upper := strings.ToUpper(word)

	registryMu.RLock()
	class, ok := dynamicKeywords[upper]
	registryMu.RUnlock()
	if ok {
		return class, true
	}

	class, ok = builtinKeywords[upper]
	return class, ok
}
