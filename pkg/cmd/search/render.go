package search

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/Paintersrp/loradex/internal/views"
)

const (
	defaultWidth   = 120
	minColumnWidth = 6
	columnGap      = "  "
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0AF"))
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFF"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// render prints groups as aligned text columns no wider than width.
func render(w io.Writer, groups []views.Group, columns []string, width int) {
	var cells [][]string
	for _, g := range groups {
		for _, r := range g.Records {
			row := make([]string, len(columns))
			for i, column := range columns {
				row[i] = oneLine(views.Cell(r, column))
			}
			cells = append(cells, row)
		}
	}
	if len(cells) == 0 {
		fmt.Fprintln(w, emptyStyle.Render("No models found"))
		return
	}

	widths := columnWidths(columns, cells, width)
	fmt.Fprintln(w, headerStyle.Render(formatRow(columns, widths)))

	next := 0
	for _, g := range groups {
		if len(g.Records) == 0 {
			continue
		}
		if g.Name != "" {
			fmt.Fprintln(w, groupStyle.Render(fmt.Sprintf("%s (%d)", g.Name, len(g.Records))))
		}
		for range g.Records {
			fmt.Fprintln(w, formatRow(cells[next], widths))
			next++
		}
	}
}

// columnWidths sizes each column to its widest cell, then shrinks the widest
// columns until the row fits.
func columnWidths(columns []string, cells [][]string, width int) []int {
	widths := make([]int, len(columns))
	for i, column := range columns {
		widths[i] = runewidth.StringWidth(column)
	}
	for _, row := range cells {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	budget := width - len(columnGap)*(len(columns)-1)
	for sum(widths) > budget {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		cell = runewidth.Truncate(cell, widths[i], "…")
		if i < len(cells)-1 {
			cell = runewidth.FillRight(cell, widths[i])
		}
		parts[i] = cell
	}
	return strings.Join(parts, columnGap)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
