package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestServiceAcquireSnapshotAppliesPendingUpdates(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "ink.safetensors", "x")
	sidecar := writeTestFile(t, root, "ink.json", `{"tags": "old"}`)

	svc := NewService(root, Config{}, nil)
	c, err := svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	if rec, ok := c.Get("ink"); !ok || rec.Attributes.Tags != "old" {
		t.Fatalf("expected initial sidecar to be loaded")
	}

	if err := os.WriteFile(sidecar, []byte(`{"tags": "updated, tags"}`), 0o644); err != nil {
		t.Fatalf("rewrite sidecar: %v", err)
	}
	svc.QueueUpdate("ink.json")
	if got := svc.Stats().Pending; got != 1 {
		t.Fatalf("expected pending queue size 1, got %d", got)
	}

	c, err = svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot with pending returned error: %v", err)
	}
	if rec, _ := c.Get("ink"); rec.Attributes.Tags != "updated, tags" {
		t.Fatalf("expected sidecar change to be applied, got %q", rec.Attributes.Tags)
	}
	if got := svc.Stats().Pending; got != 0 {
		t.Fatalf("expected pending queue to be drained, got %d", got)
	}
}

func TestServiceAddsAndRemovesModels(t *testing.T) {
	root := t.TempDir()
	first := writeTestFile(t, root, "first.safetensors", "x")

	svc := NewService(root, Config{}, nil)
	if _, err := svc.AcquireSnapshot(); err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}

	writeTestFile(t, root, "styles/second.safetensors", "x")
	if err := os.Remove(first); err != nil {
		t.Fatalf("remove model: %v", err)
	}
	svc.QueueUpdate("styles/second.safetensors")
	svc.QueueUpdate("first.safetensors")

	c, err := svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	if _, ok := c.Get("first"); ok {
		t.Fatalf("expected removed model to leave the catalog")
	}
	if _, ok := c.Get("second"); !ok {
		t.Fatalf("expected new model to join the catalog")
	}
	if got := svc.Stats().Records; got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}
}

func TestServiceHandlesDirectoryChanges(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "keep.safetensors", "x")
	writeTestFile(t, root, "gone/a.safetensors", "x")

	svc := NewService(root, Config{}, nil)
	if c, err := svc.AcquireSnapshot(); err != nil || c.Len() != 2 {
		t.Fatalf("expected 2 records, got err=%v", err)
	}

	if err := os.RemoveAll(filepath.Join(root, "gone")); err != nil {
		t.Fatalf("remove directory: %v", err)
	}
	writeTestFile(t, root, "fresh/b.safetensors", "x")
	svc.QueueUpdate("gone")
	svc.QueueUpdate("fresh")

	c, err := svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected models of a removed directory to be dropped")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected models of a new directory to be found")
	}
}

func TestServiceInvalidateAndMaxAge(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.safetensors", "x")

	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(root, Config{}, nil)
	svc.now = func() time.Time { return now }

	if _, err := svc.AcquireSnapshot(); err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	first := svc.Stats().LastRebuild

	writeTestFile(t, root, "b.safetensors", "x")
	if c, _ := svc.AcquireSnapshot(); c.Len() != 1 {
		t.Fatalf("expected unqueued file to stay invisible until a rescan")
	}

	svc.Invalidate()
	if c, _ := svc.AcquireSnapshot(); c.Len() != 2 {
		t.Fatalf("expected Invalidate to trigger a rescan")
	}

	writeTestFile(t, root, "c.safetensors", "x")
	now = now.Add(2 * time.Hour)
	c, err := svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("expected stale catalog to be rebuilt, got %d records", c.Len())
	}
	if !svc.Stats().LastRebuild.After(first) {
		t.Fatalf("expected rebuild time to advance")
	}
}

func TestServiceSnapshotsAreIsolated(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.safetensors", "x")

	svc := NewService(root, Config{}, nil)
	first, err := svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	first.remove(filepath.Join(root, "a.safetensors"))

	second, err := svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	if second.Len() != 1 {
		t.Fatalf("expected mutation of one snapshot not to leak into the next")
	}
}

func TestServiceClosePreventsSnapshots(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.safetensors", "x")

	svc := NewService(root, Config{}, nil)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	if _, err := svc.AcquireSnapshot(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}

	svc.QueueUpdate("a.safetensors")
	if got := svc.Stats().Pending; got != 0 {
		t.Fatalf("expected closed service to ignore updates, got %d pending", got)
	}
}

func TestNilServiceIsUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.AcquireSnapshot(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	svc.QueueUpdate("a")
	svc.Invalidate()
	if svc.Stats() != (Stats{}) {
		t.Fatalf("expected zero stats")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("expected nil Close, got %v", err)
	}
}

func TestServiceRejectsMissingRoot(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "missing"), Config{}, nil)
	if _, err := svc.AcquireSnapshot(); err == nil {
		t.Fatalf("expected missing models directory to fail")
	}
}

func TestServiceInvalidateDuringRebuildKeepsSnapshotStale(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.safetensors", "x")

	svc := NewService(root, Config{}, nil)
	builds := 0
	svc.build = func(root string, cfg Config, loader *Loader) (*Catalog, error) {
		builds++
		c, err := Build(root, cfg, loader)
		if builds == 1 {
			// A rename lands while the first scan is still running.
			writeTestFile(t, root, "b.safetensors", "x")
			svc.Invalidate()
		}
		return c, err
	}

	c, err := svc.AcquireSnapshot()
	if err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected invalidation during the scan to force another rescan, got %d records", c.Len())
	}
	if builds != 2 {
		t.Fatalf("expected two scans, got %d", builds)
	}

	if _, err := svc.AcquireSnapshot(); err != nil {
		t.Fatalf("AcquireSnapshot returned error: %v", err)
	}
	if builds != 2 {
		t.Fatalf("expected settled snapshot to be reused, got %d scans", builds)
	}
}
