package query

// Parse builds an expression tree from tokens. It returns nil for an empty
// token slice, which matches every record.
//
// AND and OR share one precedence level and associate to the left, so
// `a b | c` is `(a AND b) OR c` and `a | b c` is `(a OR b) AND c`. Queries
// written against this grouping depend on it; use `< >` to group instead.
//
// Parse never fails. Unexpected tokens are skipped, missing group closers
// are ignored, and dangling operators yield nil operands.
func Parse(tokens []Token) Expr {
	if len(tokens) == 0 {
		return nil
	}

	p := &parser{tokens: tokens}
	return p.parseExpression()
}

// ParseQuery tokenizes and parses a raw query string.
func ParseQuery(query string) Expr {
	return Parse(Tokenize(query))
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) current() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) parseExpression() Expr {
	left := p.parseTerm()

	for !p.atEnd() {
		switch p.current().Kind {
		case TokAnd:
			p.advance()
			left = And{Left: left, Right: p.parseTerm()}
		case TokOr:
			p.advance()
			left = Or{Left: left, Right: p.parseTerm()}
		case TokNot:
			// `a !b` reads as `a AND NOT b`.
			p.advance()
			left = And{Left: left, Right: Not{Inner: p.parseTerm()}}
		default:
			return left
		}
	}

	return left
}

func (p *parser) parseTerm() Expr {
	for !p.atEnd() {
		tok := p.current()
		switch tok.Kind {
		case TokNot:
			p.advance()
			return Not{Inner: p.parseTerm()}
		case TokGroupStart:
			p.advance()
			inner := p.parseExpression()
			if !p.atEnd() && p.current().Kind == TokGroupEnd {
				p.advance()
			}
			return inner
		case TokTerm:
			p.advance()
			return Term{Text: tok.Value}
		case TokExact:
			p.advance()
			return Phrase{Text: tok.Value}
		default:
			p.advance()
		}
	}
	return nil
}
