package civitai

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/state/statetest"
)

func library(t *testing.T, extra map[string]string) *state.State {
	t.Helper()
	files := map[string]string{}
	for rel, content := range statetest.Models {
		files[rel] = content
	}
	for rel, content := range extra {
		files[rel] = content
	}
	return statetest.Library(t, files)
}

func run(t *testing.T, s *state.State, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCmdCivitai(s)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestConvertRebuildsSidecar(t *testing.T) {
	s := library(t, map[string]string{
		"chars/Alice.civitai.info": `{"id": 2, "modelId": 1, "baseModel": "SDXL 1.0", "trainedWords": ["alice"], "model": {"name": "Alice Char"}}`,
	})

	out, err := run(t, s, "convert", "alice")
	if err != nil {
		t.Fatalf("convert returned error: %v", err)
	}
	if !strings.Contains(out, "Converted Alice") {
		t.Fatalf("unexpected output %q", out)
	}

	c, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	rec, ok := c.Get("Alice")
	if !ok {
		t.Fatalf("expected Alice in catalog")
	}
	if rec.Attributes.ActivationText != "alice" || rec.Attributes.CivitaiName != "Alice Char" {
		t.Fatalf("expected converted sidecar to be loaded, got %+v", rec.Attributes)
	}
	if rec.Attributes.Tags != "anime" {
		t.Fatalf("expected existing tags to be kept, got %q", rec.Attributes.Tags)
	}
}

func TestConvertErrors(t *testing.T) {
	s := library(t, nil)
	if _, err := run(t, s, "convert", "sky"); err == nil {
		t.Fatalf("expected convert without a civitai.info to fail")
	}
	if _, err := run(t, s, "convert", "missing"); err == nil {
		t.Fatalf("expected unknown model to fail")
	}
	if _, err := run(t, s, "convert"); err == nil {
		t.Fatalf("expected convert without id to fail")
	}
}

func TestConvertAll(t *testing.T) {
	s := library(t, map[string]string{
		"chars/Alice.civitai.info": `{"trainedWords": ["alice"]}`,
		"sky.civitai.info":         `{not json`,
	})

	out, err := run(t, s, "convert", "--all")
	if err != nil {
		t.Fatalf("convert --all returned error: %v", err)
	}
	if !strings.Contains(out, "Converted Alice") || !strings.Contains(out, "Skipped sky") {
		t.Fatalf("expected Alice converted and sky skipped, got %q", out)
	}
	if !strings.Contains(out, "1 model(s) converted") {
		t.Fatalf("expected summary line, got %q", out)
	}
	if strings.Contains(out, "ink") {
		t.Fatalf("expected models without civitai.info to be ignored, got %q", out)
	}
}

func TestFixThumbnail(t *testing.T) {
	s := library(t, map[string]string{"sky.jpg": "jpeg-bytes"})

	out, err := run(t, s, "fix-thumbnail", "sky")
	if err != nil {
		t.Fatalf("fix-thumbnail returned error: %v", err)
	}
	if !strings.Contains(out, "Renamed sky.jpg to sky.preview.png") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(s.Library.ModelsDir, "sky.preview.png")); err != nil {
		t.Fatalf("expected preview after fix: %v", err)
	}

	c, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if rec, _ := c.Get("sky"); len(rec.PreviewImages) != 1 {
		t.Fatalf("expected catalog to pick up the preview, got %v", rec.PreviewImages)
	}

	out, err = run(t, s, "fix-thumbnail", "ink")
	if err != nil || !strings.Contains(out, "already has a .preview.png") {
		t.Fatalf("expected existing preview to be reported, got %q, %v", out, err)
	}
	out, err = run(t, s, "fix-thumbnail", "Alice")
	if err != nil || !strings.Contains(out, "No image file found") {
		t.Fatalf("expected missing image to be reported, got %q, %v", out, err)
	}
}
