// Package statetest builds State values over temporary libraries for command
// tests.
package statetest

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/catalog"
	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/handler"
	"github.com/Paintersrp/loradex/internal/state"
)

// Models is a small library: ink (Pony, NSFW, with a preview) under styles,
// Alice (SDXL 1.0) under chars and an undescribed sky at the root.
var Models = map[string]string{
	"styles/ink.safetensors":  "weights",
	"styles/ink.json":         `{"baseModel": "Pony", "tags": "ink, dark", "nsfw": "true", "activation text": "inkstyle"}`,
	"styles/ink.preview.png":  "png-bytes",
	"chars/Alice.safetensors": "weights",
	"chars/Alice.json":        `{"baseModel": "SDXL 1.0", "tags": "anime"}`,
	"sky.safetensors":         "weights",
}

// Library writes files (slash-separated path to content) below a temporary
// models directory and returns a State serving it. The config is stored in a
// temporary home so commands that save settings work.
func Library(t *testing.T, files map[string]string) *state.State {
	t.Helper()

	home := t.TempDir()
	root := filepath.Join(home, "models")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir models: %v", err)
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	configPath := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(configPath, nil, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	lib := cfg.MustLibrary()
	lib.ModelsDir = root
	if err := cfg.Save(); err != nil {
		t.Fatalf("save config: %v", err)
	}

	svc := catalog.NewService(root, catalog.Config{}, zap.NewNop())
	s := &state.State{
		Config:      cfg,
		Library:     lib,
		LibraryName: cfg.CurrentLibrary,
		Home:        home,
		Handler:     handler.NewFileHandler(root),
		Catalog:     svc,
		Logger:      zap.NewNop(),
		RootStatus:  &state.RootStatus{},
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
