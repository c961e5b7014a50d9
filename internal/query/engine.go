package query

import (
	"strings"

	"github.com/Paintersrp/loradex/internal/record"
)

// advancedChars switch a query from plain substring search to the boolean
// query language.
const advancedChars = `"!|<>`

// Predicate decides whether a record belongs to a filtered result.
type Predicate func(*record.Record) bool

// IsAdvanced reports whether the query uses any query language operator.
func IsAdvanced(query string) bool {
	return strings.ContainsAny(query, advancedChars)
}

// Compile turns a raw query into a record predicate. Blank queries match
// everything, queries with operators are parsed, and anything else is a
// case-insensitive substring test on name, filename and category.
func Compile(query string) Predicate {
	if strings.TrimSpace(query) == "" {
		return func(*record.Record) bool { return true }
	}

	if IsAdvanced(query) {
		expr := ParseQuery(query)
		return func(r *record.Record) bool { return Evaluate(expr, r) }
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	return func(r *record.Record) bool {
		if r == nil {
			return false
		}
		for _, f := range record.QuickFields {
			if strings.Contains(strings.ToLower(f.Value(r)), needle) {
				return true
			}
		}
		return false
	}
}

// Filter returns the records matching query in their original order. A
// blank query returns the input slice itself.
func Filter(records []*record.Record, query string) []*record.Record {
	if strings.TrimSpace(query) == "" {
		return records
	}

	match := Compile(query)
	filtered := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if match(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
