package handler

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Paintersrp/loradex/internal/record"
)

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected %s to be gone, got %v", path, err)
	}
}

func modelFixture(t *testing.T, dir, name string, suffixes ...string) *record.Record {
	t.Helper()
	path := filepath.Join(dir, name+".safetensors")
	mustWriteFile(t, path)
	for _, suffix := range suffixes {
		mustWriteFile(t, filepath.Join(dir, name+suffix))
	}
	return &record.Record{ID: name, Name: name, Filename: name + ".safetensors", Path: path}
}

func TestRenameMovesEverySidecar(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "styles")
	rec := modelFixture(t, dir, "ink", ".json", ".civitai.info", ".preview.png", ".preview2.png")
	mustWriteFile(t, filepath.Join(dir, "ink.notes.txt"))

	h := NewFileHandler(root)
	newPath, err := h.Rename(rec, "ink-v2.safetensors")
	if err != nil {
		t.Fatalf("Rename returned error: %v", err)
	}
	if newPath != filepath.Join(dir, "ink-v2.safetensors") {
		t.Fatalf("unexpected new path %q", newPath)
	}

	for _, suffix := range []string{".safetensors", ".json", ".civitai.info", ".preview.png", ".preview2.png"} {
		mustExist(t, filepath.Join(dir, "ink-v2"+suffix))
		mustNotExist(t, filepath.Join(dir, "ink"+suffix))
	}
	// Unknown companions are left alone.
	mustExist(t, filepath.Join(dir, "ink.notes.txt"))
}

func TestRenameRejectsConflictsAndBadNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rec := modelFixture(t, root, "ink", ".json")
	modelFixture(t, root, "taken", ".json")

	h := NewFileHandler(root)
	if _, err := h.Rename(rec, "taken"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	mustExist(t, filepath.Join(root, "ink.safetensors"))
	mustExist(t, filepath.Join(root, "ink.json"))

	for _, name := range []string{"", "  ", "../escape", `a\b`, ".."} {
		if _, err := h.Rename(rec, name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName for %q, got %v", name, err)
		}
	}

	if path, err := h.Rename(rec, "ink"); err != nil || path != rec.Path {
		t.Fatalf("expected same-name rename to be a no-op, got %q, %v", path, err)
	}

	missing := &record.Record{Name: "ghost", Path: filepath.Join(root, "ghost.safetensors")}
	if _, err := h.Rename(missing, "spirit"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveRelocatesModelAndSidecars(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rec := modelFixture(t, root, "ink", ".json", ".preview.png")

	h := NewFileHandler(root)
	moved, err := h.Move(rec, "styles/new")
	if err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	if moved != 3 {
		t.Fatalf("expected 3 files moved, got %d", moved)
	}

	target := filepath.Join(root, "styles", "new")
	for _, name := range []string{"ink.safetensors", "ink.json", "ink.preview.png"} {
		mustExist(t, filepath.Join(target, name))
		mustNotExist(t, filepath.Join(root, name))
	}
}

func TestMoveFailsWhenTargetExists(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rec := modelFixture(t, root, "ink", ".json")
	mustWriteFile(t, filepath.Join(root, "dest", "ink.json"))

	h := NewFileHandler(root)
	if _, err := h.Move(rec, "dest"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	mustExist(t, filepath.Join(root, "ink.safetensors"))
	mustNotExist(t, filepath.Join(root, "dest", "ink.safetensors"))

	if _, err := h.Move(rec, "../outside"); err == nil {
		t.Fatalf("expected move outside the library to fail")
	}
	if moved, err := h.Move(rec, ""); err != nil || moved != 0 {
		t.Fatalf("expected move into the current folder to be a no-op, got %d, %v", moved, err)
	}
}

func TestFoldersListsSubdirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "styles", "anime", "a.safetensors"))
	mustWriteFile(t, filepath.Join(root, "chars", "b.safetensors"))
	mustWriteFile(t, filepath.Join(root, ".trash", "c.safetensors"))

	h := NewFileHandler(root)
	folders, err := h.Folders()
	if err != nil {
		t.Fatalf("Folders returned error: %v", err)
	}

	want := []string{"", "chars", "styles", "styles/anime"}
	if !slices.Equal(folders, want) {
		t.Fatalf("Folders = %v, want %v", folders, want)
	}
}

func TestSaveAttributesWritesIndentedSidecar(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rec := modelFixture(t, root, "ink")

	h := NewFileHandler(root)
	attrs := map[string]any{"activation text": "inkstyle", "nsfw": "false"}
	if err := h.SaveAttributes(rec, attrs); err != nil {
		t.Fatalf("SaveAttributes returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "ink.json"))
	if err != nil {
		t.Fatalf("failed to read sidecar: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("sidecar is not valid JSON: %v", err)
	}
	if got["activation text"] != "inkstyle" {
		t.Fatalf("unexpected sidecar contents: %s", data)
	}
	if !strings.Contains(string(data), "\n    \"") {
		t.Fatalf("expected indented output, got %s", data)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("failed to list root: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected temporary files to be cleaned up, found %d entries", len(entries))
	}
}
