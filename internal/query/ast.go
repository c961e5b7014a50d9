package query

import "fmt"

// Expr is a node of a parsed query. A nil Expr matches every record.
type Expr interface {
	isExpr()
	String() string
}

// And matches when both sides match.
type And struct {
	Left  Expr
	Right Expr
}

// Or matches when either side matches.
type Or struct {
	Left  Expr
	Right Expr
}

// Not inverts its inner expression.
type Not struct {
	Inner Expr
}

// Term matches a word as a case-insensitive substring of any field.
type Term struct {
	Text string
}

// Phrase matches a quoted phrase, spaces included, as a case-insensitive
// substring of any field.
type Phrase struct {
	Text string
}

func (And) isExpr() {}
func (Or) isExpr() {}
func (Not) isExpr() {}
func (Term) isExpr() {}
func (Phrase) isExpr() {}

func (e And) String() string { return fmt.Sprintf("(%s AND %s)", render(e.Left), render(e.Right)) }
func (e Or) String() string { return fmt.Sprintf("(%s OR %s)", render(e.Left), render(e.Right)) }
func (e Not) String() string { return fmt.Sprintf("NOT %s", render(e.Inner)) }

func (e Term) String() string { return e.Text }
func (e Phrase) String() string { return fmt.Sprintf("%q", e.Text) }

func render(e Expr) string {
	if e == nil {
		return "*"
	}
	return e.String()
}

// Explain renders an expression tree for display; nil renders as "*".
func Explain(e Expr) string {
	return render(e)
}
