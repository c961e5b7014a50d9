package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/loradex/internal/query"
	"github.com/Paintersrp/loradex/internal/record"
)

// AllBaseModels disables the base model filter.
const AllBaseModels = "all"

// Options describe how a record list is narrowed, ordered and grouped for
// display.
type Options struct {
	HideNSFW      bool
	BaseModel     string
	Query         string
	Sort          string
	GroupBy       string
	ModifiedAfter time.Time
}

// Apply runs the display pipeline: NSFW filter, query, base model filter,
// modification cutoff and finally the sort. The input slice is not modified.
func Apply(records []*record.Record, opts Options) []*record.Record {
	out := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if opts.HideNSFW && r.IsNSFW() {
			continue
		}
		out = append(out, r)
	}

	out = query.Filter(out, opts.Query)

	if base := strings.TrimSpace(opts.BaseModel); base != "" && base != AllBaseModels {
		filtered := out[:0:0]
		for _, r := range out {
			if r.BaseModel == base {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}

	if !opts.ModifiedAfter.IsZero() {
		filtered := out[:0:0]
		for _, r := range out {
			if r.ModifiedAt.After(opts.ModifiedAfter) {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}

	return Sort(out, opts.Sort)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true)
	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0AF")).
			Padding(0, 1)
	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)
	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			SetString("│")
)

// Title renders the status line shown above result lists.
func Title(opts Options, shown, total int) string {
	sortName := opts.Sort
	if sortName == "" {
		sortName = SortNameAsc
	}
	groupName := opts.GroupBy
	if groupName == "" {
		groupName = GroupNone
	}
	base := opts.BaseModel
	if base == "" {
		base = AllBaseModels
	}

	nsfw := inactiveStyle.Render("NSFW shown")
	if opts.HideNSFW {
		nsfw = activeStyle.Render("NSFW hidden")
	}

	parts := []string{
		titleStyle.Render("Sort:") + activeStyle.Render(sortName),
		titleStyle.Render("Group:") + activeStyle.Render(groupName),
		titleStyle.Render("Base:") + activeStyle.Render(base),
		nsfw,
		inactiveStyle.Render(fmt.Sprintf("%d/%d models", shown, total)),
	}
	return strings.Join(parts, dividerStyle.String())
}
