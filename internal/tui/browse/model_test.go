package browse

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/loradex/internal/record"
	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/views"
)

func fixtures() []*record.Record {
	day := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	return []*record.Record{
		{ID: "alpha", Name: "alpha", Filename: "alpha.safetensors", Path: "/lib/alpha.safetensors", BaseModel: "Pony", Category: "chars", ModifiedAt: day},
		{
			ID: "beta", Name: "beta", Filename: "beta.safetensors", Path: "/lib/beta.safetensors", BaseModel: "SDXL 1.0", Category: "styles",
			ModifiedAt: day.AddDate(0, 0, 2),
			Attributes: record.Attributes{NSFW: "true", ActivationText: "beta_style"},
		},
		{ID: "gamma", Name: "gamma", Filename: "gamma.safetensors", Path: "/lib/gamma.safetensors", BaseModel: "Pony", Category: "styles", ModifiedAt: day.AddDate(0, 0, 1)},
	}
}

func names(m *Model) []string {
	out := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r.Name)
	}
	return out
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTypingFiltersOnEveryKeystroke(t *testing.T) {
	m := New(fixtures(), Config{})

	typeText(m, "g")
	if got := strings.Join(names(m), ","); got != "gamma" {
		t.Fatalf("expected only gamma after typing g, got %s", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := len(m.rows); got != 3 {
		t.Fatalf("expected all rows after clearing the query, got %d", got)
	}

	typeText(m, "styles !beta")
	if got := strings.Join(names(m), ","); got != "gamma" {
		t.Fatalf("expected query language to apply, got %s", got)
	}
	if m.Options().Query != "styles !beta" {
		t.Fatalf("expected query option to follow input, got %q", m.Options().Query)
	}
}

func TestTabCyclesSortModes(t *testing.T) {
	m := New(fixtures(), Config{})

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Options().Sort != views.SortNameDesc {
		t.Fatalf("expected name-desc after first tab, got %q", m.Options().Sort)
	}
	if got := strings.Join(names(m), ","); got != "gamma,beta,alpha" {
		t.Fatalf("unexpected order %s", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := strings.Join(names(m), ","); got != "beta,gamma,alpha" {
		t.Fatalf("expected newest first, got %s", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Options().Sort != views.SortNameAsc {
		t.Fatalf("expected sort to wrap to name-asc, got %q", m.Options().Sort)
	}
}

func TestGroupAndNSFWToggles(t *testing.T) {
	m := New(fixtures(), Config{})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if m.Options().GroupBy != "Category" {
		t.Fatalf("expected Category grouping, got %q", m.Options().GroupBy)
	}
	if got := strings.Join(names(m), ","); got != "alpha,beta,gamma" {
		t.Fatalf("expected grouped order chars then styles, got %s", got)
	}
	if cols := m.tableColumns(true); cols[0].Title != groupColumn {
		t.Fatalf("expected leading group column, got %+v", cols)
	}
	rows := m.table.Rows()
	if len(rows[0]) != len(m.columns)+1 {
		t.Fatalf("expected group cell before %d columns, got %v", len(m.columns), rows[0])
	}
	if rows[0][0] != "chars" || rows[1][0] != "styles" || rows[2][0] != "" {
		t.Fatalf("expected group label on the first row of each group, got %v", rows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if !m.Options().HideNSFW {
		t.Fatalf("expected NSFW to be hidden")
	}
	if got := strings.Join(names(m), ","); got != "alpha,gamma" {
		t.Fatalf("expected beta to be hidden, got %s", got)
	}
}

func TestCopyActivationText(t *testing.T) {
	var copied string
	m := New(fixtures(), Config{Copy: func(s string) error {
		copied = s
		return nil
	}})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if copied != "" || !strings.Contains(m.status, "no activation text") {
		t.Fatalf("expected alpha to have nothing to copy, status %q", m.status)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if r := m.Selected(); r == nil || r.Name != "beta" {
		t.Fatalf("expected cursor on beta, got %+v", r)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if copied != "beta_style" {
		t.Fatalf("expected activation text to be copied, got %q", copied)
	}

	failing := New(fixtures(), Config{Copy: func(string) error { return errors.New("no clipboard") }})
	failing.Update(tea.KeyMsg{Type: tea.KeyDown})
	failing.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if !strings.Contains(failing.status, "no clipboard") {
		t.Fatalf("expected copy error in status, got %q", failing.status)
	}
}

func TestSelectionSurvivesResort(t *testing.T) {
	m := New(fixtures(), Config{})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if r := m.Selected(); r == nil || r.Name != "gamma" {
		t.Fatalf("expected gamma selected, got %+v", r)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if r := m.Selected(); r == nil || r.Name != "gamma" {
		t.Fatalf("expected selection to follow gamma after resort, got %+v", r)
	}
}

func TestRefreshAndWatcherMessagesReload(t *testing.T) {
	loads := 0
	m := New(fixtures()[:1], Config{Load: func() ([]*record.Record, error) {
		loads++
		return fixtures(), nil
	}})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if loads != 1 || len(m.rows) != 3 {
		t.Fatalf("expected refresh to reload records, loads=%d rows=%d", loads, len(m.rows))
	}

	m.Update(state.LibraryChangedMsg{Path: "beta.json"})
	if loads != 2 {
		t.Fatalf("expected library change to reload records, loads=%d", loads)
	}

	m.Update(state.CatalogStatsMsg{Line: "Catalog: 3 models · pending 0"})
	if !strings.Contains(m.View(), "Catalog: 3 models") {
		t.Fatalf("expected catalog status in view")
	}

	failing := New(fixtures(), Config{Load: func() ([]*record.Record, error) {
		return nil, errors.New("disk gone")
	}})
	failing.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if len(failing.rows) != 3 || !strings.Contains(failing.status, "disk gone") {
		t.Fatalf("expected failed refresh to keep records and report, status %q", failing.status)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m := New(fixtures(), Config{})
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("expected quit command for %s", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected tea.QuitMsg for %s", msg)
		}
	}
}

func TestViewShowsTitleAndCounts(t *testing.T) {
	m := New(fixtures(), Config{Options: views.Options{HideNSFW: true}})
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})

	view := m.View()
	if !strings.Contains(view, "2/3 models") {
		t.Fatalf("expected counts in view, got:\n%s", view)
	}
}

func TestNextMode(t *testing.T) {
	modes := []string{"a", "b", "c"}
	if got := nextMode(modes, "c"); got != "a" {
		t.Fatalf("expected wrap to a, got %q", got)
	}
	if got := nextMode(modes, "column:Size:asc"); got != "a" {
		t.Fatalf("expected unknown mode to restart, got %q", got)
	}
}
