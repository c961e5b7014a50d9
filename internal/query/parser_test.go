package query

import (
	"reflect"
	"testing"
)

func TestParseEmpty(t *testing.T) {
	if got := Parse(nil); got != nil {
		t.Fatalf("expected nil expression for no tokens, got %v", got)
	}
	if got := ParseQuery("   "); got != nil {
		t.Fatalf("expected nil expression for blank query, got %v", got)
	}
}

func TestParseQueryShapes(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "tree", want: "tree"},
		{query: `"tree lora"`, want: `"tree lora"`},
		{query: "a b", want: "(a AND b)"},
		{query: "a b | c", want: "((a AND b) OR c)"},
		{query: "a | b c", want: "((a OR b) AND c)"},
		{query: "a !b", want: "(a AND NOT b)"},
		{query: "!a", want: "NOT a"},
		{query: "!!a", want: "NOT NOT a"},
		{query: "a | <b c>", want: "(a OR (b AND c))"},
		{query: "<a | b> c", want: "((a OR b) AND c)"},
		{query: "!<a | b>", want: "NOT (a OR b)"},
		{query: "<tree | sky> !green", want: "((tree OR sky) AND NOT green)"},
		{query: "<<a>>", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Explain(ParseQuery(tt.query))
			if got != tt.want {
				t.Fatalf("ParseQuery(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseToleratesMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "missing group closer", query: "<a | b", want: "(a OR b)"},
		{name: "dangling or", query: "a |", want: "(a OR *)"},
		{name: "dangling not", query: "a !", want: "(a AND NOT *)"},
		{name: "leading or is skipped", query: "| a", want: "a"},
		{name: "empty group", query: "<>", want: "*"},
		{name: "stray closer stops the expression", query: "a > b", want: "a"},
		{name: "only operators", query: "| ! <", want: "NOT *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(ParseQuery(tt.query))
			if got != tt.want {
				t.Fatalf("ParseQuery(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseTokenFragments(t *testing.T) {
	tokens := []Token{tokAnd, term("a"), tokOr, exact("b c"), tokEnd, term("ignored")}
	got := Parse(tokens)
	want := Or{Left: Term{Text: "a"}, Right: Phrase{Text: "b c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse(%v) = %#v, want %#v", tokens, got, want)
	}
}
