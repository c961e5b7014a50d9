package query

import (
	"strings"

	"github.com/Paintersrp/loradex/internal/record"
)

// Evaluate reports whether the record satisfies the expression. A nil
// expression matches everything.
func Evaluate(expr Expr, r *record.Record) bool {
	if expr == nil {
		return true
	}

	switch e := expr.(type) {
	case And:
		return Evaluate(e.Left, r) && Evaluate(e.Right, r)
	case Or:
		return Evaluate(e.Left, r) || Evaluate(e.Right, r)
	case Not:
		return !Evaluate(e.Inner, r)
	case Term:
		return matchTerm(r, strings.ToLower(e.Text))
	case Phrase:
		return matchAnyField(r, strings.ToLower(e.Text))
	default:
		return false
	}
}

// matchTerm matches a single word against the record. A term that still
// holds spaces, which happens for an unterminated quote such as `"red car`,
// requires every word to match some field.
func matchTerm(r *record.Record, term string) bool {
	if !strings.Contains(term, " ") {
		return matchAnyField(r, term)
	}

	for _, word := range strings.Fields(term) {
		if !matchAnyField(r, word) {
			return false
		}
	}
	return true
}

func matchAnyField(r *record.Record, needle string) bool {
	if r == nil {
		return false
	}
	for _, f := range record.Fields {
		if matchField(f.Value(r), needle, f.ExactMatch) {
			return true
		}
	}
	return false
}

// matchField compares a lower-cased needle against one field value. Exact
// match fields try whole-value equality, then equality with any comma
// separated element, then fall back to substring containment.
func matchField(value, needle string, exact bool) bool {
	if value == "" {
		return false
	}
	lowered := strings.ToLower(value)

	if exact {
		if lowered == needle {
			return true
		}
		if strings.Contains(lowered, ",") {
			for _, part := range strings.Split(lowered, ",") {
				if strings.TrimSpace(part) == needle {
					return true
				}
			}
		}
	}

	return strings.Contains(lowered, needle)
}
