package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Record is one model file in the library together with the metadata found
// in its sidecar files.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
	// Path is the absolute on-disk location of the model file.
	Path string `json:"path"`
	// RelPath is Path relative to the library root, using forward slashes.
	RelPath         string         `json:"relPath"`
	Category        string         `json:"category"`
	BaseModel       string         `json:"baseModel"`
	Size            int64          `json:"size"`
	ModifiedAt      time.Time      `json:"dateModified"`
	PreviewImages   []string       `json:"previewImages"`
	AssociatedFiles []string       `json:"associatedFiles"`
	Attributes      Attributes     `json:"json"`
	CivitaiInfo     map[string]any `json:"civitaiInfo,omitempty"`
}

// Attributes mirrors the JSON sidecar written next to a model file. Keys
// that have no dedicated field are preserved in Extra.
type Attributes struct {
	CivitaiName    string
	Subcategory    string
	Folder         string
	Creator        string
	Tags           string
	ActivationText string
	NegativeText   string
	CivitaiText    string
	Description    string
	ExamplePrompt  string
	AuthorName     string
	NSFW           string
	BaseModel      string
	Category       string

	Extra map[string]any
}

var attributeKeys = map[string]func(*Attributes) *string{
	"civitai name":    func(a *Attributes) *string { return &a.CivitaiName },
	"subcategory":     func(a *Attributes) *string { return &a.Subcategory },
	"folder":          func(a *Attributes) *string { return &a.Folder },
	"creator":         func(a *Attributes) *string { return &a.Creator },
	"tags":            func(a *Attributes) *string { return &a.Tags },
	"activation text": func(a *Attributes) *string { return &a.ActivationText },
	"negative text":   func(a *Attributes) *string { return &a.NegativeText },
	"civitai text":    func(a *Attributes) *string { return &a.CivitaiText },
	"description":     func(a *Attributes) *string { return &a.Description },
	"example prompt":  func(a *Attributes) *string { return &a.ExamplePrompt },
	"author name":     func(a *Attributes) *string { return &a.AuthorName },
	"nsfw":            func(a *Attributes) *string { return &a.NSFW },
	"category":        func(a *Attributes) *string { return &a.Category },
}

// UnmarshalJSON decodes a sidecar document. Values that are not strings are
// stringified so that numeric or boolean sidecar values remain searchable.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Attributes{Extra: raw}
	for key, value := range raw {
		if value == nil {
			continue
		}
		switch key {
		case "baseModel", "base model":
			if a.BaseModel == "" || key == "baseModel" {
				a.BaseModel = stringify(value)
			}
			continue
		}
		if field, ok := attributeKeys[key]; ok {
			*field(a) = stringify(value)
		}
	}
	return nil
}

// MarshalJSON writes the raw sidecar keys back out.
func (a Attributes) MarshalJSON() ([]byte, error) {
	if a.Extra == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.Extra)
}

// IsNSFW reports whether the sidecar flags the model as not safe for work.
func (r *Record) IsNSFW() bool {
	return r != nil && r.Attributes.NSFW == "true"
}

// TagList splits the comma separated tags attribute.
func (r *Record) TagList() []string {
	if r == nil || strings.TrimSpace(r.Attributes.Tags) == "" {
		return nil
	}
	parts := strings.Split(r.Attributes.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// ModelURL returns the Civitai page recorded in the civitai.info sidecar.
func (r *Record) ModelURL() string {
	if r == nil || r.CivitaiInfo == nil {
		return ""
	}
	if url, ok := r.CivitaiInfo["url"].(string); ok {
		return url
	}
	return ""
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(value)
	}
}
