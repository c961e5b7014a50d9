package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/loradex/internal/record"
)

// Markdown describes r as a markdown document for detail panes.
func Markdown(r *record.Record) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Name)

	a := r.Attributes
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	rows := [][2]string{
		{"Base Model", Cell(r, "Base Model")},
		{"Category", Cell(r, "Category")},
		{"Size", Cell(r, "Size")},
		{"Modified", Cell(r, "Date")},
		{"NSFW", Cell(r, "NSFW")},
		{"Creator", a.Creator},
		{"Author", a.AuthorName},
		{"Tags", a.Tags},
		{"Path", r.RelPath},
	}
	if url := r.ModelURL(); url != "" {
		rows = append(rows, [2]string{"Civitai", url})
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "| **%s** | %s |\n", row[0], escapeCell(row[1]))
	}

	sections := [][2]string{
		{"Activation Text", a.ActivationText},
		{"Negative Text", a.NegativeText},
		{"Civitai Text", a.CivitaiText},
		{"Example Prompt", a.ExamplePrompt},
	}
	for _, section := range sections {
		if strings.TrimSpace(section[1]) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n```\n%s\n```\n", section[0], section[1])
	}

	if strings.TrimSpace(a.Description) != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", a.Description)
	}

	if len(r.PreviewImages) > 0 {
		b.WriteString("\n## Previews\n\n")
		for _, p := range r.PreviewImages {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(r.AssociatedFiles) > 0 {
		b.WriteString("\n## Files\n\n")
		for _, f := range r.AssociatedFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderMarkdown renders md for the terminal, wrapping at width. The raw
// markdown is returned when rendering fails.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// CopyFields are the record values that can be printed or copied on their
// own.
var CopyFields = []string{"activation", "negative", "civitai", "prompt", "path", "id", "name", "url"}

// CopyValue returns one of CopyFields for r.
func CopyValue(r *record.Record, field string) (string, bool) {
	if r == nil {
		return "", false
	}
	switch field {
	case "activation":
		return r.Attributes.ActivationText, true
	case "negative":
		return r.Attributes.NegativeText, true
	case "civitai":
		return r.Attributes.CivitaiText, true
	case "prompt":
		return r.Attributes.ExamplePrompt, true
	case "path":
		return r.Path, true
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "url":
		return r.ModelURL(), true
	}
	return "", false
}
