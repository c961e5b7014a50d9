package state

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/catalog"
	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/handler"
	"github.com/Paintersrp/loradex/internal/logger"
)

// ErrNoLibrary is returned when a command needs models but the active library
// has no models directory yet.
var ErrNoLibrary = errors.New("no models directory configured; run `loradex init` first")

type State struct {
	Config      *config.Config
	Library     *config.Library
	LibraryName string
	Home        string
	Handler     *handler.FileHandler
	Catalog     CatalogService
	Watcher     *LibraryWatcher
	Logger      *zap.Logger
	RootStatus  *RootStatus
}

// RootStatus is a status line shared between the watcher heartbeat and the
// TUI.
type RootStatus struct {
	mu   sync.RWMutex
	line string
}

func (r *RootStatus) Set(line string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.line = line
	r.mu.Unlock()
}

func (r *RootStatus) Value() string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.line
}

// CatalogService exposes the shared catalog snapshots produced for the
// active library.
type CatalogService interface {
	AcquireSnapshot() (*catalog.Catalog, error)
	QueueUpdate(string)
	Invalidate()
	Stats() catalog.Stats
	Close() error
}

// NewState loads the config and prepares the active library. A missing models
// directory is not an error here; commands that need models report
// ErrNoLibrary through Snapshot.
func NewState(libraryOverride string) (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	s := &State{
		Config:     cfg,
		Home:       home,
		RootStatus: &RootStatus{},
	}

	if libraryOverride != "" {
		if err := cfg.ActivateLibrary(libraryOverride); err != nil {
			return nil, err
		}
	}

	if err := s.configureLibrary(); err != nil {
		return nil, err
	}
	return s, nil
}

// UseLibrary switches the process to another configured library without
// persisting the choice.
func (s *State) UseLibrary(name string) error {
	if strings.TrimSpace(name) == "" || name == s.LibraryName {
		return nil
	}
	if err := s.Config.ActivateLibrary(name); err != nil {
		return err
	}
	return s.configureLibrary()
}

// Reload rebuilds the library-scoped services after the active library's
// settings changed.
func (s *State) Reload() error {
	return s.configureLibrary()
}

func (s *State) configureLibrary() error {
	lib, err := s.Config.ActiveLibrary()
	if err != nil {
		return err
	}

	if err := s.closeLibrary(); err != nil {
		return err
	}

	log, err := logger.NewLogger("cli", lib.LogLevel)
	if err != nil {
		return err
	}

	s.Library = lib
	s.LibraryName = s.Config.CurrentLibrary
	s.Logger = log.With(zap.String("library", s.LibraryName))
	s.Handler = handler.NewFileHandler(lib.ModelsDir)
	s.Catalog = nil
	if strings.TrimSpace(lib.ModelsDir) != "" {
		s.Catalog = catalog.NewService(lib.ModelsDir, catalog.Config{
			IgnoredFolders: append([]string(nil), lib.IgnoredFolders...),
		}, s.Logger)
	}
	return nil
}

// Snapshot returns the current catalog of the active library.
func (s *State) Snapshot() (*catalog.Catalog, error) {
	if s == nil || s.Catalog == nil {
		return nil, ErrNoLibrary
	}
	return s.Catalog.AcquireSnapshot()
}

// StartWatcher begins watching the models directory, forwarding changes to
// the catalog. It is a no-op when already watching.
func (s *State) StartWatcher() (*LibraryWatcher, error) {
	if s.Watcher != nil {
		return s.Watcher, nil
	}
	if s.Library == nil || strings.TrimSpace(s.Library.ModelsDir) == "" {
		return nil, ErrNoLibrary
	}

	watcher, err := NewLibraryWatcher(s.Library.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create library watcher: %w", err)
	}

	svc := s.Catalog
	log := s.Logger
	watcher.OnChange(func(rel string) {
		log.Debug("library change", zap.String("path", rel))
		if svc != nil {
			svc.QueueUpdate(rel)
		}
	})

	s.Watcher = watcher
	return watcher, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

// LoadConfig reads the config file, creating it when missing. An incomplete
// config (no models directory yet) is returned without error.
func LoadConfig(home string) (*config.Config, error) {
	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	_ = viper.ReadInConfig()

	if err := config.EnsureConfigExists(home); err != nil && !config.IsInitError(err) {
		return nil, err
	}

	return config.Load(home)
}

func (s *State) closeLibrary() error {
	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if s.Catalog != nil {
		if err := s.Catalog.Close(); err != nil && !errors.Is(err, catalog.ErrClosed) {
			errs = append(errs, err)
		}
		s.Catalog = nil
	}
	return errors.Join(errs...)
}

// Close releases resources associated with the state, including the library
// watcher and shared catalog service.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	err := s.closeLibrary()
	if s.Logger != nil {
		_ = s.Logger.Sync()
	}
	return err
}
