package copy

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Paintersrp/loradex/internal/state/statetest"
)

func TestCopyWritesClipboard(t *testing.T) {
	prev := writeClipboard
	t.Cleanup(func() { writeClipboard = prev })

	var copied string
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"ink"}, want: "inkstyle"},
		{args: []string{"sky", "--field", "name"}, want: "sky"},
		{args: []string{"sky"}, wantErr: true},
		{args: []string{"missing"}, wantErr: true},
		{args: []string{"ink", "--field", "weights"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			copied = ""
			cmd := NewCmdCopy(statetest.Library(t, statetest.Models))
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, copied %q", copied)
				}
				return
			}
			if err != nil {
				t.Fatalf("copy returned error: %v", err)
			}
			if copied != tt.want {
				t.Fatalf("copied %q, want %q", copied, tt.want)
			}
		})
	}
}

func TestCopyReportsClipboardFailure(t *testing.T) {
	prev := writeClipboard
	t.Cleanup(func() { writeClipboard = prev })
	writeClipboard = func(string) error { return errors.New("no clipboard") }

	cmd := NewCmdCopy(statetest.Library(t, statetest.Models))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"ink"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "no clipboard") {
		t.Fatalf("expected clipboard error, got %v", err)
	}
}
