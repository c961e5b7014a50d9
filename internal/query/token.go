package query

import "fmt"

// TokenKind is the type of a lexical token.
type TokenKind int

const (
	TokTerm TokenKind = iota
	TokExact
	TokAnd
	TokOr
	TokNot
	TokGroupStart
	TokGroupEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokTerm:
		return "Term"
	case TokExact:
		return "Exact"
	case TokAnd:
		return "And"
	case TokOr:
		return "Or"
	case TokNot:
		return "Not"
	case TokGroupStart:
		return "GroupStart"
	case TokGroupEnd:
		return "GroupEnd"
	default:
		return "Unknown"
	}
}

// Token is a lexical unit of a query. Value is only set for TokTerm and TokExact.
type Token struct {
	Kind  TokenKind
	Value string
}

func (t Token) String() string {
	if t.Kind == TokTerm || t.Kind == TokExact {
		return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
	}
	return t.Kind.String()
}

// isOperatorChar reports characters that suppress an implicit AND when they
// directly follow a space.
func isOperatorChar(ch rune) bool {
	switch ch {
	case '|', '!', '<', '>':
		return true
	}
	return false
}
