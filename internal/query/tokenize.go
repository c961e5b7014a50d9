package query

import "strings"

type lexer struct {
	input    []rune
	pos      int
	buf      strings.Builder
	tokens   []Token
	inPhrase bool
	// depth tracks group nesting. Unbalanced brackets are tolerated, so it
	// may end up negative or above zero.
	depth int
}

// Tokenize splits a query into tokens in a single left-to-right pass.
//
// Whitespace is the implicit AND operator, `|` is OR, `!` is NOT, `< >`
// groups and `"..."` quotes an exact phrase. Malformed input never fails:
// unterminated quotes and groups are flushed as-is.
func Tokenize(query string) []Token {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	l := &lexer{input: []rune(query)}
	for ; l.pos < len(l.input); l.pos++ {
		l.step(l.input[l.pos])
	}
	l.flush(TokTerm)
	return l.tokens
}

func (l *lexer) step(ch rune) {
	if ch == '"' {
		if l.inPhrase {
			l.flush(TokExact)
		} else {
			l.flush(TokTerm)
		}
		l.inPhrase = !l.inPhrase
		return
	}

	if l.inPhrase {
		l.buf.WriteRune(ch)
		return
	}

	switch ch {
	case '<':
		l.flush(TokTerm)
		l.depth++
		l.emit(Token{Kind: TokGroupStart})
	case '>':
		l.flush(TokTerm)
		l.depth--
		l.emit(Token{Kind: TokGroupEnd})
	case '|':
		l.flush(TokTerm)
		l.emit(Token{Kind: TokOr})
	case '!':
		l.flush(TokTerm)
		l.emit(Token{Kind: TokNot})
	case ' ':
		l.flush(TokTerm)
		if len(l.tokens) > 0 && l.pos+1 < len(l.input) && !isOperatorChar(l.input[l.pos+1]) {
			l.emit(Token{Kind: TokAnd})
		}
	default:
		l.buf.WriteRune(ch)
	}
}

// flush emits the pending buffer as a token of the given kind when it holds
// anything besides whitespace.
func (l *lexer) flush(kind TokenKind) {
	value := strings.TrimSpace(l.buf.String())
	l.buf.Reset()
	if value == "" {
		return
	}
	l.emit(Token{Kind: kind, Value: value})
}

func (l *lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
}
