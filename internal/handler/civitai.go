package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/record"
)

var (
	// ErrNoCivitaiInfo is returned when a model has no civitai.info file.
	ErrNoCivitaiInfo = errors.New("no .civitai.info file found")
	// ErrNoImage is returned when no loose image sits next to a model.
	ErrNoImage = errors.New("no image file found")
)

// preservedFields keep their sidecar value over the civitai.info one when
// already set.
var preservedFields = []string{
	"activation text", "sd version", "preferred weight",
	"negative text", "civitai text",
	"nsfw", "url", "base model", "example prompt",
	"category", "subcategory", "tags", "creator",
}

var (
	htmlTag = regexp.MustCompile(`<.*?>`)

	thumbnailExts = []string{".png", ".jpg", ".jpeg", ".PNG", ".JPG", ".JPEG"}
)

// ConvertCivitaiInfo rewrites the JSON sidecar of rec from its civitai.info
// file and returns the written attributes.
func (h *FileHandler) ConvertCivitaiInfo(rec *record.Record) (map[string]any, error) {
	if rec == nil || rec.Path == "" {
		return nil, ErrNotFound
	}

	dir := filepath.Dir(rec.Path)
	raw, err := os.ReadFile(filepath.Join(dir, rec.Name+constants.CivitaiInfoExt))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", rec.Name, ErrNoCivitaiInfo)
		}
		return nil, err
	}

	var info map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&info); err != nil {
		return nil, fmt.Errorf("decode civitai.info: %w", err)
	}

	existing, err := readSidecar(filepath.Join(dir, rec.Name+constants.SidecarExt))
	if err != nil {
		return nil, err
	}

	attrs := civitaiAttributes(info, filepath.Base(dir))
	for _, field := range preservedFields {
		if v, ok := existing[field]; ok && v != nil && v != "" {
			attrs[field] = v
		}
	}

	if err := h.SaveAttributes(rec, attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

func readSidecar(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var existing map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&existing); err != nil {
		// An unreadable sidecar is replaced wholesale.
		return nil, nil
	}
	return existing, nil
}

func civitaiAttributes(info map[string]any, folder string) map[string]any {
	attrs := map[string]any{
		"activation text":  "",
		"base model":       "",
		"category":         "",
		"civitai name":     "",
		"civitai text":     "",
		"creator":          "",
		"description":      "",
		"example prompt":   "",
		"folder":           folder,
		"high low":         "",
		"model version":    "",
		"name":             "",
		"negative text":    "",
		"notes":            "",
		"nsfw":             "",
		"preferred weight": 0,
		"sd version":       "",
		"subcategory":      "",
		"tags":             "",
		"url":              "",
	}

	words := trainedWords(info["trainedWords"])
	if len(words) > 0 {
		attrs["activation text"] = words[0]
		attrs["civitai text"] = strings.Join(words, ", ")
	}

	base, hasBase := info["baseModel"].(string)
	if hasBase {
		attrs["base model"] = base
		if strings.HasPrefix(base, "SD 1") {
			attrs["sd version"] = "SD1"
		} else {
			attrs["sd version"] = "SD2"
		}
	}

	if model, ok := info["model"].(map[string]any); ok {
		if name, ok := model["name"]; ok {
			attrs["civitai name"] = name
			attrs["name"] = name
		}
		if nsfw, ok := model["nsfw"]; ok {
			attrs["nsfw"] = strings.ToLower(fmt.Sprint(nsfw))
		}
	}

	if images, ok := info["images"].([]any); ok && len(images) > 0 {
		if first, ok := images[0].(map[string]any); ok {
			if meta, ok := first["meta"].(map[string]any); ok {
				if prompt, ok := meta["prompt"]; ok {
					attrs["example prompt"] = prompt
				}
				if negative, ok := meta["negativePrompt"]; ok {
					attrs["negative text"] = negative
				}
			}
		}
	}

	modelID, hasModelID := info["modelId"]
	versionID, hasVersionID := info["id"]
	if hasModelID && hasVersionID {
		url := fmt.Sprintf("https://civitai.com/models/%v?modelVersionId=%v", modelID, versionID)
		attrs["url"] = url

		notes := []string{"URL: " + url}
		if hasBase {
			notes = append(notes, "Base Model: "+base)
		}
		if len(words) > 0 {
			notes = append(notes, "Activation Words: "+strings.Join(words, ", "))
		}
		if desc := plainText(info["description"]); desc != "" {
			notes = append(notes, "Description: "+desc)
		}
		attrs["notes"] = strings.Join(notes, "\n")
	}

	return attrs
}

func trainedWords(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	words := make([]string, 0, len(list))
	for _, w := range list {
		words = append(words, fmt.Sprint(w))
	}
	return words
}

// plainText strips markup from a civitai description and collapses
// whitespace.
func plainText(v any) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return ""
	}
	s = htmlTag.ReplaceAllString(html.UnescapeString(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// FixThumbnail renames a loose image next to rec, such as name.jpg, to its
// .preview.png name and returns the renamed file's base name.
func (h *FileHandler) FixThumbnail(rec *record.Record) (string, error) {
	if rec == nil || rec.Path == "" {
		return "", ErrNotFound
	}

	dir := filepath.Dir(rec.Path)
	target := filepath.Join(dir, rec.Name+constants.PreviewSuffixes[0])
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(target), ErrExists)
	}

	for _, ext := range thumbnailExts {
		candidate := filepath.Join(dir, rec.Name+ext)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if err := os.Rename(candidate, target); err != nil {
			return "", fmt.Errorf("rename %s: %w", filepath.Base(candidate), err)
		}
		return filepath.Base(candidate), nil
	}
	return "", fmt.Errorf("%s: %w", rec.Name, ErrNoImage)
}
