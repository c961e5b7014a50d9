package rename

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Paintersrp/loradex/internal/handler"
	"github.com/Paintersrp/loradex/internal/state/statetest"
)

func TestRenameUpdatesCatalog(t *testing.T) {
	s := statetest.Library(t, statetest.Models)
	cmd := NewCmdRename(s)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"ink", "ink-v2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("rename returned error: %v", err)
	}

	for _, name := range []string{"ink-v2.safetensors", "ink-v2.json", "ink-v2.preview.png"} {
		if _, err := os.Stat(filepath.Join(s.Library.ModelsDir, "styles", name)); err != nil {
			t.Fatalf("expected %s after rename: %v", name, err)
		}
	}

	c, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if _, ok := c.Get("ink-v2"); !ok {
		t.Fatalf("expected renamed model in catalog")
	}
	if _, ok := c.Get("ink"); ok {
		t.Fatalf("expected old id to be gone")
	}
}

func TestRenameErrors(t *testing.T) {
	tests := []struct {
		args []string
		want error
	}{
		{args: []string{"ink", "Alice/../x"}, want: handler.ErrInvalidName},
		{args: []string{"missing", "x"}},
	}
	for _, tt := range tests {
		cmd := NewCmdRename(statetest.Library(t, statetest.Models))
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(tt.args)
		err := cmd.Execute()
		if err == nil {
			t.Fatalf("expected %v to fail", tt.args)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Fatalf("expected %v, got %v", tt.want, err)
		}
	}
}
