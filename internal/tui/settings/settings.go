// Package settings is an interactive editor for the active library's
// settings.
package settings

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/erikgeiser/promptkit/selection"

	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/views"
)

type item struct {
	key   string
	value string
}

func (i item) Title() string       { return i.key }
func (i item) Description() string { return orPlaceholder(i.value) }
func (i item) FilterValue() string { return i.key }

type keyMap struct {
	edit   key.Binding
	cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit setting"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel edit"),
		),
	}
}

// Model lists every setting of the active library. Enumerated settings are
// edited with a selection prompt, everything else with a text input. Each
// change is validated and saved immediately.
type Model struct {
	list    list.Model
	keys    keyMap
	cfg     *config.Config
	input   textinput.Model
	editing string
	choice  *selection.Model[string]
	changed bool
}

func New(cfg *config.Config) *Model {
	keys := newKeyMap()

	l := list.New(items(cfg), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Library settings: " + cfg.CurrentLibrary
	l.Styles.Title = titleStyle
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.edit}
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 1024

	return &Model{
		list:  l,
		keys:  keys,
		cfg:   cfg,
		input: input,
	}
}

func items(cfg *config.Config) []list.Item {
	lib := cfg.MustLibrary()
	out := make([]list.Item, 0, len(config.SettingKeys))
	for _, k := range config.SettingKeys {
		value, _ := lib.Value(k)
		out = append(out, item{key: k, value: value})
	}
	return out
}

// Choices returns the allowed values of an enumerated setting, or nil when
// the setting is free text.
func Choices(key string) []string {
	switch key {
	case "default_sort":
		return views.SortModes
	case "default_view":
		return []string{"table", "grid"}
	case "group_by":
		return views.GroupModes
	case "hide_nsfw":
		return []string{"true", "false"}
	case "log_level":
		return []string{"debug", "info", "warn", "error"}
	}
	return nil
}

// Changed reports whether any setting was saved.
func (m *Model) Changed() bool {
	return m.changed
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := appStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		if m.editing != "" {
			return m.updateEditor(msg)
		}
		if key.Matches(msg, m.keys.edit) {
			return m, m.startEdit()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) startEdit() tea.Cmd {
	selected, ok := m.list.SelectedItem().(item)
	if !ok {
		return nil
	}
	m.editing = selected.key

	if choices := Choices(selected.key); choices != nil {
		sel := selection.New(fmt.Sprintf("Choose %s:", selected.key), choices)
		sel.Filter = nil
		m.choice = selection.NewModel(sel)
		return m.choice.Init()
	}

	m.input.SetValue(selected.value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) {
		m.stopEdit()
		return m, nil
	}

	if m.choice != nil {
		_, cmd := m.choice.Update(msg)
		if key.Matches(msg, m.keys.edit) {
			value, err := m.choice.Value()
			if err != nil {
				return m, cmd
			}
			return m, m.save(value)
		}
		return m, cmd
	}

	if key.Matches(msg, m.keys.edit) {
		return m, m.save(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) save(value string) tea.Cmd {
	name := m.editing
	m.stopEdit()

	if err := m.cfg.SetValue(name, value); err != nil {
		return m.list.NewStatusMessage(errorMessageStyle(err.Error()))
	}

	m.changed = true
	m.list.SetItems(items(m.cfg))
	return m.list.NewStatusMessage(statusMessageStyle("Updated and saved: " + name))
}

func (m *Model) stopEdit() {
	m.editing = ""
	m.choice = nil
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) View() string {
	if m.choice != nil {
		return appStyle.Render(m.choice.View())
	}
	if m.editing != "" {
		return appStyle.Render(inputStyle.Render(m.editing + "\n\n" + m.input.View()))
	}
	return appStyle.Render(m.list.View())
}

// Run opens the editor and reports whether anything was saved.
func Run(cfg *config.Config) (bool, error) {
	m := New(cfg)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return false, fmt.Errorf("error running settings editor: %w", err)
	}
	return m.Changed(), nil
}

func orPlaceholder(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
