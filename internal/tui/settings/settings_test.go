package settings

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/loradex/internal/config"
)

func newTestModel(t *testing.T) (*Model, *config.Config) {
	t.Helper()
	home := t.TempDir()
	path := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	m := New(cfg)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, cfg
}

func selectKey(t *testing.T, m *Model, name string) {
	t.Helper()
	idx := slices.Index(config.SettingKeys, name)
	if idx < 0 {
		t.Fatalf("unknown setting %q", name)
	}
	m.list.Select(idx)
}

func TestEditTextSettingSaves(t *testing.T) {
	m, cfg := newTestModel(t)
	selectKey(t, m, "server.addr")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing != "server.addr" {
		t.Fatalf("expected editor for server.addr, editing %q", m.editing)
	}
	if m.input.Value() != cfg.MustLibrary().Server.Addr {
		t.Fatalf("expected input to start from the current value, got %q", m.input.Value())
	}

	m.input.SetValue("127.0.0.1:9000")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.editing != "" {
		t.Fatalf("expected editor to close after saving")
	}
	if got := cfg.MustLibrary().Server.Addr; got != "127.0.0.1:9000" {
		t.Fatalf("expected saved address, got %q", got)
	}
	if !m.Changed() {
		t.Fatalf("expected model to report a change")
	}
	if it := m.list.SelectedItem().(item); it.value != "127.0.0.1:9000" {
		t.Fatalf("expected list to show the new value, got %q", it.value)
	}
}

func TestEditRejectsInvalidValue(t *testing.T) {
	m, cfg := newTestModel(t)
	selectKey(t, m, "visible_columns")
	before := append([]string(nil), cfg.MustLibrary().VisibleColumns...)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("Filename,Nope")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.Changed() {
		t.Fatalf("expected invalid value not to be saved")
	}
	if got := cfg.MustLibrary().VisibleColumns; !slices.Equal(got, before) {
		t.Fatalf("expected columns to stay %v, got %v", before, got)
	}
}

func TestEscapeCancelsEdit(t *testing.T) {
	m, cfg := newTestModel(t)
	selectKey(t, m, "models_dir")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("/somewhere")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.editing != "" || m.Changed() {
		t.Fatalf("expected edit to be cancelled")
	}
	if cfg.MustLibrary().ModelsDir != "" {
		t.Fatalf("expected models_dir to stay unset")
	}
}

func TestEnumeratedSettingsUseSelection(t *testing.T) {
	m, _ := newTestModel(t)
	selectKey(t, m, "group_by")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.choice == nil {
		t.Fatalf("expected a selection prompt for group_by")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.choice != nil || m.editing != "" {
		t.Fatalf("expected escape to close the selection")
	}
}

func TestChoices(t *testing.T) {
	for _, k := range config.SettingKeys {
		choices := Choices(k)
		switch k {
		case "default_sort", "default_view", "group_by", "hide_nsfw", "log_level":
			if len(choices) == 0 {
				t.Fatalf("expected choices for %s", k)
			}
		default:
			if choices != nil {
				t.Fatalf("expected %s to be free text", k)
			}
		}
	}
}
