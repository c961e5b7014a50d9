package views

import (
	"fmt"

	"github.com/Paintersrp/loradex/internal/record"
)

// Cell renders the display value of column for r.
func Cell(r *record.Record, column string) string {
	if r == nil {
		return ""
	}
	a := r.Attributes
	switch column {
	case "Filename":
		return r.Filename
	case "Civitai Name":
		return a.AuthorName
	case "Base Model":
		return orDefault(r.BaseModel, "Unknown")
	case "Category":
		return orDefault(r.Category, "Uncategorized")
	case "Path":
		return r.Path
	case "Size":
		return FormatSize(r.Size)
	case "Date":
		if r.ModifiedAt.IsZero() {
			return ""
		}
		return r.ModifiedAt.Format("2006-01-02")
	case "NSFW":
		if r.IsNSFW() {
			return "yes"
		}
		return "no"
	case "Positive Words":
		return a.ActivationText
	case "Negative Words":
		return a.NegativeText
	case "Civitai Words":
		return a.CivitaiText
	case "Description":
		return a.Description
	case "Folder":
		return a.Folder
	case "Subcategory":
		return a.Subcategory
	case "Creator":
		return a.Creator
	case "Example Prompt":
		return a.ExamplePrompt
	case "Tags":
		return a.Tags
	}
	return ""
}

// FormatSize renders a byte count in the largest fitting binary unit.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
