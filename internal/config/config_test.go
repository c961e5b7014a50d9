package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/loradex/internal/config"
)

func writeConfig(t *testing.T, home string, data map[string]any) {
	t.Helper()
	configPath := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}
	raw, err := yaml.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal config data: %v", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestLoadEmptyFileCreatesDefaultLibrary(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, nil)
	if err := os.WriteFile(config.GetConfigPath(home), nil, 0o644); err != nil {
		t.Fatalf("failed to truncate config: %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("expected empty config to load: %v", err)
	}
	if cfg.CurrentLibrary != "default" {
		t.Fatalf("expected default library, got %q", cfg.CurrentLibrary)
	}
	lib := cfg.MustLibrary()
	if lib.DefaultSort != "name-asc" || lib.DefaultView != "table" || lib.GroupBy != "none" {
		t.Fatalf("expected defaults to be applied, got %+v", lib)
	}
	if len(lib.VisibleColumns) == 0 || lib.Server.Addr == "" {
		t.Fatalf("expected default columns and address, got %+v", lib)
	}
}

func TestLoadRejectsInvalidSort(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"current_library": "main",
		"libraries": map[string]any{
			"main": map[string]any{
				"models_dir":   filepath.Join(home, "loras"),
				"default_sort": "random",
			},
		},
	})

	_, err := config.Load(home)
	if err == nil {
		t.Fatalf("expected load to fail for an unsupported sort")
	}
	if !strings.Contains(err.Error(), "invalid sort") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestLoadPicksFirstLibraryWhenNoneSelected(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"libraries": map[string]any{
			"sdxl": map[string]any{"models_dir": "/b"},
			"pony": map[string]any{"models_dir": "/a"},
		},
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CurrentLibrary != "pony" {
		t.Fatalf("expected alphabetically first library, got %q", cfg.CurrentLibrary)
	}
}

func TestSetValuePersistsAndValidates(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"current_library": "main",
		"libraries": map[string]any{
			"main": map[string]any{"models_dir": filepath.Join(home, "loras")},
		},
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	valid := map[string]string{
		"default_sort":    "column:Size:desc",
		"group_by":        "Base Model",
		"hide_nsfw":       "true",
		"visible_columns": "Filename, Tags",
		"ignored_folders": ".trash,old",
		"server.addr":     ":9000",
	}
	for key, value := range valid {
		if err := cfg.SetValue(key, value); err != nil {
			t.Fatalf("SetValue(%q, %q) returned error: %v", key, value, err)
		}
	}

	invalid := map[string]string{
		"default_sort":    "sideways",
		"default_view":    "carousel",
		"group_by":        "Mood",
		"hide_nsfw":       "maybe",
		"visible_columns": "Filename,Nope",
		"log_level":       "chatty",
		"unknown":         "x",
	}
	for key, value := range invalid {
		if err := cfg.SetValue(key, value); err == nil {
			t.Fatalf("expected SetValue(%q, %q) to fail", key, value)
		}
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	lib := reloaded.MustLibrary()
	if lib.DefaultSort != "column:Size:desc" || lib.GroupBy != "Base Model" || !lib.HideNSFW {
		t.Fatalf("expected settings to persist, got %+v", lib)
	}
	if !slices.Equal(lib.VisibleColumns, []string{"Filename", "Tags"}) {
		t.Fatalf("expected columns to persist, got %v", lib.VisibleColumns)
	}
	if !slices.Equal(lib.IgnoredFolders, []string{".trash", "old"}) {
		t.Fatalf("expected ignored folders to persist, got %v", lib.IgnoredFolders)
	}
	if lib.Server.Addr != ":9000" {
		t.Fatalf("expected server address to persist, got %q", lib.Server.Addr)
	}
	if got, ok := lib.Value("hide_nsfw"); !ok || got != "true" {
		t.Fatalf("expected Value(hide_nsfw) = true, got %q", got)
	}
}

func TestAddSwitchAndRemoveLibrary(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"current_library": "main",
		"libraries": map[string]any{
			"main": map[string]any{"models_dir": "/main"},
		},
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := cfg.AddLibrary("flux", &config.Library{ModelsDir: "/flux"}, false); err != nil {
		t.Fatalf("AddLibrary returned error: %v", err)
	}
	if cfg.CurrentLibrary != "main" {
		t.Fatalf("expected current library to stay main, got %q", cfg.CurrentLibrary)
	}
	if err := cfg.AddLibrary("flux", nil, false); err == nil {
		t.Fatalf("expected duplicate library to fail")
	}

	if err := cfg.SwitchLibrary("flux"); err != nil {
		t.Fatalf("SwitchLibrary returned error: %v", err)
	}
	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.CurrentLibrary != "flux" || reloaded.MustLibrary().ModelsDir != "/flux" {
		t.Fatalf("expected flux to be active after reload")
	}
	if !slices.Equal(reloaded.LibraryNames(), []string{"flux", "main"}) {
		t.Fatalf("unexpected library names %v", reloaded.LibraryNames())
	}

	if err := reloaded.RemoveLibrary("flux"); err != nil {
		t.Fatalf("RemoveLibrary returned error: %v", err)
	}
	if reloaded.CurrentLibrary != "main" {
		t.Fatalf("expected fallback to main, got %q", reloaded.CurrentLibrary)
	}
	if err := reloaded.RemoveLibrary("main"); err == nil {
		t.Fatalf("expected removing the last library to fail")
	}
}

func TestEnsureConfigExistsRequiresModelsDir(t *testing.T) {
	home := t.TempDir()

	err := config.EnsureConfigExists(home)
	if err == nil {
		t.Fatalf("expected missing models dir to be reported")
	}
	var initErr *config.ConfigInitError
	if !errors.As(err, &initErr) || !config.IsInitError(err) {
		t.Fatalf("expected ConfigInitError, got %T: %v", err, err)
	}
	if _, statErr := os.Stat(config.GetConfigPath(home)); statErr != nil {
		t.Fatalf("expected config file to be created: %v", statErr)
	}

	writeConfig(t, home, map[string]any{
		"current_library": "main",
		"libraries": map[string]any{
			"main": map[string]any{"models_dir": filepath.Join(home, "loras")},
		},
	})
	if err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("expected configured library to pass, got %v", err)
	}
}
