package views

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Paintersrp/loradex/internal/record"
)

const GroupNone = "none"

// GroupModes lists the supported group-by keys, GroupNone first.
var GroupModes = []string{
	GroupNone,
	"Category",
	"Civitai Name",
	"Base Model",
	"Subcategory",
	"Folder",
	"Creator",
	"Tags",
	"NSFW",
	"Size",
	"Date",
	"Path",
}

// Group is a named run of records sharing a group-by value.
type Group struct {
	Name    string
	Records []*record.Record
}

// ValidGroupBy reports whether by is a supported group-by key.
func ValidGroupBy(by string) bool {
	if by == "" {
		return true
	}
	for _, mode := range GroupModes {
		if mode == by {
			return true
		}
	}
	return false
}

// GroupRecords partitions records by the given key. Records keep their input
// order within a group. Date groups are ordered newest first, all others
// alphabetically. With no grouping a single unnamed group is returned.
func GroupRecords(records []*record.Record, by string) []Group {
	if by == "" || by == GroupNone {
		return []Group{{Records: records}}
	}

	index := make(map[string]int)
	var groups []Group
	months := make(map[string]time.Time)
	for _, r := range records {
		name := groupValue(r, by)
		if by == "Date" {
			months[name] = monthOf(r.ModifiedAt)
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Records = append(groups[i].Records, r)
	}

	if by == "Date" {
		sort.SliceStable(groups, func(i, j int) bool {
			return months[groups[i].Name].After(months[groups[j].Name])
		})
	} else {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Name < groups[j].Name
		})
	}
	return groups
}

func groupValue(r *record.Record, by string) string {
	a := r.Attributes
	switch by {
	case "Category":
		return orDefault(r.Category, "Uncategorized")
	case "Civitai Name":
		return orDefault(a.AuthorName, "Unknown Author")
	case "Base Model":
		return orDefault(r.BaseModel, "Unknown")
	case "Subcategory":
		return orDefault(a.Subcategory, "Uncategorized")
	case "Folder":
		return orDefault(a.Folder, "Uncategorized")
	case "Creator":
		return orDefault(a.Creator, "Unknown Creator")
	case "Tags":
		if tags := r.TagList(); len(tags) > 0 && tags[0] != "" {
			return tags[0]
		}
		return "No Tags"
	case "NSFW":
		if r.IsNSFW() {
			return "NSFW"
		}
		return "Safe"
	case "Size":
		mb := float64(r.Size) / (1024 * 1024)
		switch {
		case mb < 10:
			return "Less than 10MB"
		case mb < 50:
			return "10MB - 50MB"
		case mb < 100:
			return "50MB - 100MB"
		}
		return "Over 100MB"
	case "Date":
		return r.ModifiedAt.Format("January 2006")
	case "Path":
		if r.RelPath == "" {
			return "Unknown Path"
		}
		dir := path.Dir(strings.TrimPrefix(r.RelPath, "/"))
		if dir == "." {
			return "Root"
		}
		return dir
	}
	return "Ungrouped"
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
