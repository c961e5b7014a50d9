package views

import (
	"sort"
	"strings"

	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/record"
)

const (
	SortNameAsc    = "name-asc"
	SortNameDesc   = "name-desc"
	SortDateNewest = "date-newest"
	SortDateOldest = "date-oldest"

	columnSortPrefix = "column:"
)

// SortModes are the named sort orders, in the order the UI cycles them.
var SortModes = []string{SortNameAsc, SortNameDesc, SortDateNewest, SortDateOldest}

// Columns are the table columns that can be displayed or sorted on.
var Columns = []string{
	"Filename",
	"Civitai Name",
	"Base Model",
	"Category",
	"Path",
	"Size",
	"Date",
	"NSFW",
	"Positive Words",
	"Negative Words",
	"Civitai Words",
	"Description",
	"Folder",
	"Subcategory",
	"Creator",
	"Example Prompt",
	"Tags",
}

// ColumnSort builds a column sort key such as "column:Size:desc".
func ColumnSort(column string, descending bool) string {
	dir := "asc"
	if descending {
		dir = "desc"
	}
	return columnSortPrefix + column + ":" + dir
}

// ValidSort reports whether key names a sort order Sort understands.
func ValidSort(key string) bool {
	for _, mode := range SortModes {
		if key == mode {
			return true
		}
	}
	column, dir, ok := parseColumnSort(key)
	if !ok || (dir != "asc" && dir != "desc") {
		return false
	}
	return isColumn(column)
}

func isColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

func parseColumnSort(key string) (column, dir string, ok bool) {
	if !strings.HasPrefix(key, columnSortPrefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(key, columnSortPrefix), ":", 2)
	column = parts[0]
	dir = "asc"
	if len(parts) == 2 && parts[1] != "" {
		dir = parts[1]
	}
	return column, dir, true
}

// Sort returns a sorted copy of records. Unknown keys fall back to name-asc.
func Sort(records []*record.Record, key string) []*record.Record {
	sorted := make([]*record.Record, len(records))
	copy(sorted, records)

	if column, dir, ok := parseColumnSort(key); ok {
		sortByColumn(sorted, column, dir != "desc")
		return sorted
	}

	switch key {
	case SortNameDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareFold(sorted[i].Name, sorted[j].Name) > 0
		})
	case SortDateNewest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ModifiedAt.After(sorted[j].ModifiedAt)
		})
	case SortDateOldest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ModifiedAt.Before(sorted[j].ModifiedAt)
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareFold(sorted[i].Name, sorted[j].Name) < 0
		})
	}
	return sorted
}

func sortByColumn(records []*record.Record, column string, ascending bool) {
	var less func(a, b *record.Record) int
	switch column {
	case "Size":
		less = func(a, b *record.Record) int { return compareInt(a.Size, b.Size) }
	case "Date":
		less = func(a, b *record.Record) int { return a.ModifiedAt.Compare(b.ModifiedAt) }
	case "NSFW":
		less = func(a, b *record.Record) int { return compareInt(nsfwRank(a), nsfwRank(b)) }
	default:
		if !isColumn(column) {
			return
		}
		less = func(a, b *record.Record) int {
			return compareFold(sortText(a, column), sortText(b, column))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		c := less(records[i], records[j])
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

func sortText(r *record.Record, column string) string {
	switch column {
	case "Filename":
		name := r.Filename
		if strings.HasSuffix(strings.ToLower(name), constants.ModelExt) {
			name = name[:len(name)-len(constants.ModelExt)]
		}
		return name
	case "Base Model":
		return orDefault(r.BaseModel, constants.UnknownBaseModel)
	case "Category":
		return orDefault(r.Category, "Uncategorized")
	default:
		return Cell(r, column)
	}
}

func nsfwRank(r *record.Record) int64 {
	if r.IsNSFW() {
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
