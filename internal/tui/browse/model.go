package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/cache"
	"github.com/Paintersrp/loradex/internal/record"
	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/views"
)

const (
	groupColumn    = "Group"
	minColumnWidth = 8
	detailCacheLen = 64

	heartbeatInterval = 30 * time.Second
)

// Config carries what the browser needs besides the records themselves.
// Load supplies fresh records on refresh and watcher events; Copy defaults to
// the system clipboard; Status is the initial catalog status line.
type Config struct {
	Options views.Options
	Columns []string
	Load    func() ([]*record.Record, error)
	Copy    func(string) error
	Watcher *state.LibraryWatcher
	Status  string
}

type Model struct {
	input   textinput.Model
	table   table.Model
	keys    keyMap
	opts    views.Options
	columns []string
	records []*record.Record
	rows    []*record.Record
	shown   int
	load    func() ([]*record.Record, error)
	copy    func(string) error
	watcher *state.LibraryWatcher
	details *cache.LRUCache[string, string]
	status  string
	catalog string
	width   int
	height  int
}

// New builds a browser over records. Options are applied immediately.
func New(records []*record.Record, cfg Config) *Model {
	input := textinput.New()
	input.Placeholder = `search: words, "phrase", a | b, !not, <group>`
	input.Prompt = "> "
	input.SetValue(cfg.Options.Query)
	input.Focus()

	columns := cfg.Columns
	if len(columns) == 0 {
		columns = []string{"Filename", "Base Model", "Category"}
	}

	copyFn := cfg.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	t := table.New(table.WithFocused(true), table.WithHeight(10))

	m := &Model{
		input:   input,
		table:   t,
		keys:    newKeyMap(),
		opts:    cfg.Options,
		columns: columns,
		records: records,
		load:    cfg.Load,
		copy:    copyFn,
		watcher: cfg.Watcher,
		catalog: cfg.Status,
		details: cache.NewLRUCache[string, string](detailCacheLen),
	}
	m.applyView()
	return m
}

// FromState builds a browser for the active library of s, starting from
// query, and watches the library for changes.
func FromState(s *state.State, query string) (*Model, error) {
	c, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	lib := s.Library
	cfg := Config{
		Options: views.Options{
			Query:    query,
			HideNSFW: lib.HideNSFW,
			Sort:     lib.DefaultSort,
			GroupBy:  lib.GroupBy,
		},
		Columns: lib.VisibleColumns,
		Load: func() ([]*record.Record, error) {
			c, err := s.Snapshot()
			if err != nil {
				return nil, err
			}
			return c.Records(), nil
		},
	}
	if msg, ok := s.CatalogHeartbeatCmd()().(state.CatalogStatsMsg); ok {
		cfg.Status = msg.Line
	}

	if w, err := s.StartWatcher(); err == nil {
		w.SetHeartbeat(s.CatalogHeartbeatCmd, heartbeatInterval)
		cfg.Watcher = w
	} else {
		s.Logger.Warn("library watcher unavailable", zap.Error(err))
	}

	return New(c.Records(), cfg), nil
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Start())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case state.LibraryChangedMsg:
		m.reload()
		return m, m.watcher.Start()

	case state.WatcherErrMsg:
		m.status = fmt.Sprintf("watcher error: %v", msg.Err)
		return m, m.watcher.Start()

	case state.CatalogStatsMsg:
		m.catalog = msg.Line
		return m, m.watcher.Start()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.cycleSort):
		m.opts.Sort = nextMode(views.SortModes, orDefault(m.opts.Sort, views.SortNameAsc))
		m.applyView()
		return m, nil

	case key.Matches(msg, m.keys.cycleGroup):
		m.opts.GroupBy = nextMode(views.GroupModes, orDefault(m.opts.GroupBy, views.GroupNone))
		m.applyView()
		return m, nil

	case key.Matches(msg, m.keys.toggleNSFW):
		m.opts.HideNSFW = !m.opts.HideNSFW
		m.applyView()
		return m, nil

	case key.Matches(msg, m.keys.copy):
		m.copyActivation()
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		m.reload()
		return m, nil

	case key.Matches(msg, m.keys.up, m.keys.down, m.keys.pageUp, m.keys.pageDown):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.opts.Query {
		m.opts.Query = m.input.Value()
		m.applyView()
	}
	return m, cmd
}

// Selected returns the record under the cursor.
func (m *Model) Selected() *record.Record {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}
	return m.rows[idx]
}

// Options returns the current view options.
func (m *Model) Options() views.Options {
	return m.opts
}

func (m *Model) copyActivation() {
	r := m.Selected()
	if r == nil {
		m.status = "nothing selected"
		return
	}
	text := strings.TrimSpace(r.Attributes.ActivationText)
	if text == "" {
		m.status = fmt.Sprintf("%s has no activation text", r.Name)
		return
	}
	if err := m.copy(text); err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("copied activation text of %s", r.Name)
}

func (m *Model) reload() {
	if m.load == nil {
		return
	}
	records, err := m.load()
	if err != nil {
		m.status = fmt.Sprintf("refresh failed: %v", err)
		return
	}
	m.records = records
	m.details = cache.NewLRUCache[string, string](detailCacheLen)
	m.applyView()
}

func (m *Model) applyView() {
	selected := m.Selected()
	filtered := views.Apply(m.records, m.opts)
	m.shown = len(filtered)

	grouped := m.opts.GroupBy != "" && m.opts.GroupBy != views.GroupNone
	m.rows = m.rows[:0]
	rows := make([]table.Row, 0, len(filtered))
	for _, g := range views.GroupRecords(filtered, m.opts.GroupBy) {
		for i, r := range g.Records {
			row := make(table.Row, 0, len(m.columns)+1)
			if grouped {
				label := ""
				if i == 0 {
					label = g.Name
				}
				row = append(row, label)
			}
			for _, column := range m.columns {
				row = append(row, views.Cell(r, column))
			}
			rows = append(rows, row)
			m.rows = append(m.rows, r)
		}
	}

	m.table.SetRows(nil)
	m.table.SetColumns(m.tableColumns(grouped))
	m.table.SetRows(rows)

	cursor := 0
	for i, r := range m.rows {
		if r == selected {
			cursor = i
			break
		}
	}
	m.table.SetCursor(cursor)
}

func (m *Model) tableColumns(grouped bool) []table.Column {
	titles := m.columns
	if grouped {
		titles = append([]string{groupColumn}, m.columns...)
	}

	width := m.tableWidth()
	each := minColumnWidth
	if len(titles) > 0 && width/len(titles) > each {
		each = width / len(titles)
	}

	cols := make([]table.Column, len(titles))
	for i, title := range titles {
		cols[i] = table.Column{Title: title, Width: each - 2}
	}
	return cols
}

func (m *Model) tableWidth() int {
	if m.width == 0 {
		return 80
	}
	h, _ := appStyle.GetFrameSize()
	return (m.width - h) * 3 / 5
}

func (m *Model) resize() {
	_, v := appStyle.GetFrameSize()
	height := m.height - v - 6
	if height < 3 {
		height = 3
	}
	m.table.SetHeight(height)
	m.input.Width = m.tableWidth() - 4
	m.applyView()
}

func (m *Model) detail() string {
	r := m.Selected()
	if r == nil {
		return "No model selected"
	}

	width := m.width - m.tableWidth() - 8
	if width < 20 {
		width = 40
	}
	cacheKey := fmt.Sprintf("%s@%d", r.Path, width)
	if rendered, ok := m.details.Get(cacheKey); ok {
		return rendered
	}
	rendered := views.RenderMarkdown(views.Markdown(r), width)
	m.details.Put(cacheKey, rendered)
	return rendered
}

func (m *Model) View() string {
	title := views.Title(m.opts, m.shown, len(m.records))

	left := lipgloss.JoinVertical(lipgloss.Left,
		inputStyle.Render(m.input.View()),
		m.table.View(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left,
		detailStyle.MaxHeight(m.table.Height()+4).Render(m.detail()),
	)

	footer := []string{}
	if m.status != "" {
		footer = append(footer, statusStyle.Render(m.status))
	}
	if m.catalog != "" {
		footer = append(footer, statusStyle.Render(m.catalog))
	}
	footer = append(footer, helpStyle.Render(helpLine(m.keys.shortHelp())))

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		strings.Join(footer, "  "),
	))
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// nextMode returns the mode after current, wrapping around. Unknown values
// start over at the first mode.
func nextMode(modes []string, current string) string {
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
