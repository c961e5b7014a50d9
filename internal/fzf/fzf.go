package fzf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/loradex/internal/record"
	"github.com/Paintersrp/loradex/internal/views"
)

// ErrNoSelection is returned when the user leaves the finder without picking
// a model.
var ErrNoSelection = errors.New("no model selected")

// FuzzyFinder picks one model out of a list of records.
type FuzzyFinder struct {
	Header  string
	records []*record.Record
	labels  []string
	find    func(labels []string, query string, preview func(i, w, h int) string, header string) (int, error)
}

func NewFuzzyFinder(records []*record.Record, header string) *FuzzyFinder {
	f := &FuzzyFinder{Header: header, records: records, find: findLabel}
	f.labels = make([]string, len(records))
	for i, r := range records {
		f.labels[i] = Label(r)
	}
	return f
}

// Run opens the finder with an optional initial query and returns the
// chosen record.
func (f *FuzzyFinder) Run(query string) (*record.Record, error) {
	if len(f.records) == 0 {
		return nil, fmt.Errorf("no models to pick from")
	}

	idx, err := f.find(f.labels, query, f.renderPreview, f.Header)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrNoSelection
		}
		return nil, fmt.Errorf("error selecting model: %w", err)
	}
	if idx < 0 || idx >= len(f.records) {
		return nil, ErrNoSelection
	}

	return f.records[idx], nil
}

func findLabel(labels []string, query string, preview func(i, w, h int) string, header string) (int, error) {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(preview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if header != "" {
		options = append(options, fuzzyfinder.WithHeader(header))
	}

	return fuzzyfinder.Find(labels, func(i int) string {
		return labels[i]
	}, options...)
}

// Label is the line shown for r in the finder list.
func Label(r *record.Record) string {
	if r == nil {
		return ""
	}

	tags := r.TagList()
	base := views.Cell(r, "Base Model")
	if len(tags) == 0 {
		return fmt.Sprintf("%s [%s] [No tags] ", r.Name, base)
	}
	return fmt.Sprintf("%s [%s] [Tags: %s] ", r.Name, base, strings.Join(tags, ", "))
}

func (f *FuzzyFinder) renderPreview(i, w, h int) string {
	if i < 0 || i >= len(f.records) {
		return ""
	}
	width := w - 4
	if width > 100 || width <= 0 {
		width = 100
	}
	return views.RenderMarkdown(views.Markdown(f.records[i]), width)
}
