package views

import (
	"strings"
	"testing"
)

func TestTableContainsCells(t *testing.T) {
	out := Table([]string{"Tag", "Models"}, [][]string{{"anime", "2"}, {"ink", "1"}})
	for _, want := range []string{"Tag", "Models", "anime", "ink", "2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "anime") > strings.Index(out, "ink") {
		t.Fatalf("expected rows in input order, got:\n%s", out)
	}
}

func TestTableKeepsLongCellsWhole(t *testing.T) {
	out := Table([]string{"Setting", "Value"}, [][]string{{"models_dir", "/home/u/models"}})
	for _, want := range []string{"models_dir", "/home/u/models", "Setting", "Value"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q untruncated, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "…") {
		t.Fatalf("expected no truncated cells, got:\n%s", out)
	}
}
