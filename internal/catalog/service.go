package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/pathutil"
)

// ErrClosed signals that the catalog service has been shut down and cannot be
// used to produce new snapshots.
var ErrClosed = errors.New("catalog service closed")

// ErrUnavailable indicates that the catalog has not been built yet.
var ErrUnavailable = errors.New("catalog unavailable")

// Stats captures lightweight instrumentation about the shared catalog.
type Stats struct {
	LastRebuild time.Time `json:"lastRebuild"`
	Pending     int       `json:"pending"`
	Records     int       `json:"records"`
}

// Service owns the shared catalog for a library and coordinates incremental
// updates coming from the library watcher.
type Service struct {
	mu          sync.RWMutex
	root        string
	config      Config
	loader      *Loader
	logger      *zap.Logger
	catalog     *Catalog
	pending     map[string]struct{}
	stale       bool
	generation  uint64
	lastRebuild time.Time
	closed      bool

	now    func() time.Time
	stat   func(string) (fs.FileInfo, error)
	build  func(string, Config, *Loader) (*Catalog, error)
	maxAge time.Duration
}

// NewService constructs a library-scoped catalog service rooted at the models
// directory.
func NewService(root string, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	normalized := pathutil.NormalizePath(root)
	return &Service{
		root:    normalized,
		config:  cfg,
		loader:  NewLoader(normalized, logger),
		logger:  logger,
		pending: make(map[string]struct{}),
		now:     time.Now,
		stat:    os.Stat,
		build:   Build,
		maxAge:  time.Hour,
	}
}

// Root returns the models directory served by s.
func (s *Service) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// AcquireSnapshot returns a private copy of the catalog. The catalog is rebuilt
// or brought up to date with pending updates first when needed.
func (s *Service) AcquireSnapshot() (*Catalog, error) {
	if s == nil {
		return nil, ErrUnavailable
	}

	if err := s.ensureFresh(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.catalog == nil {
		return nil, ErrUnavailable
	}

	return s.catalog.Clone(), nil
}

// QueueUpdate schedules a path, relative to the models directory, for
// incremental reloading. Sidecar paths resolve to their model.
func (s *Service) QueueUpdate(rel string) {
	if s == nil {
		return
	}

	trimmed := strings.TrimSpace(rel)
	if trimmed == "" {
		return
	}

	normalized := filepath.ToSlash(trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.pending == nil {
		s.pending = make(map[string]struct{})
	}
	s.pending[normalized] = struct{}{}
}

// Invalidate forces the next snapshot to rescan the models directory.
func (s *Service) Invalidate() {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
	s.generation++
}

// Stats returns instrumentation about the catalog lifecycle.
func (s *Service) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{LastRebuild: s.lastRebuild, Pending: len(s.pending)}
	if s.catalog != nil {
		stats.Records = s.catalog.Len()
	}
	return stats
}

// Close releases the service. Subsequent calls to AcquireSnapshot will return
// ErrClosed.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.catalog = nil
	s.pending = nil
	return nil
}

func (s *Service) ensureFresh() error {
	if s == nil {
		return ErrUnavailable
	}

	s.mu.RLock()
	closed := s.closed
	needsRebuild := s.catalog == nil || s.stale
	if !needsRebuild && s.maxAge > 0 {
		needsRebuild = s.now().Sub(s.lastRebuild) > s.maxAge
	}
	hasPending := len(s.pending) > 0
	s.mu.RUnlock()

	if closed {
		return ErrClosed
	}

	if needsRebuild {
		if err := s.rebuild(); err != nil {
			return err
		}
	}

	if hasPending && !needsRebuild {
		if err := s.applyPending(); err != nil {
			return err
		}
	}

	s.mu.RLock()
	stale := s.stale
	s.mu.RUnlock()
	if stale {
		return s.rebuild()
	}

	return nil
}

func (s *Service) rebuild() error {
	if s.root == "" {
		return errors.New("models directory cannot be empty")
	}

	// Updates queued before the scan are covered by it.
	s.mu.Lock()
	s.pending = make(map[string]struct{})
	generation := s.generation
	s.mu.Unlock()

	started := s.now()
	c, err := s.build(s.root, s.config, s.loader)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.catalog = c
	// An Invalidate during the scan keeps the snapshot stale.
	s.stale = s.generation != generation
	s.lastRebuild = s.now()
	s.logger.Debug("catalog rebuilt",
		zap.String("root", s.root),
		zap.Int("records", c.Len()),
		zap.Duration("took", s.lastRebuild.Sub(started)),
	)
	return nil
}

func (s *Service) applyPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.catalog == nil {
		return ErrUnavailable
	}
	if len(s.pending) == 0 {
		return nil
	}

	c := s.catalog
	pending := s.pending
	s.pending = make(map[string]struct{})

	for rel := range pending {
		abs := pathutil.NormalizePath(filepath.Join(s.root, filepath.FromSlash(rel)))
		if abs == "" {
			continue
		}

		info, statErr := s.stat(abs)
		if statErr == nil && info.IsDir() {
			// New or renamed directories are picked up by a rescan.
			s.stale = true
			s.generation++
			continue
		}

		modelPath, ok := ModelPathFor(abs)
		if !ok {
			if errors.Is(statErr, fs.ErrNotExist) {
				c.removeUnder(abs)
			}
			continue
		}

		_, err := s.stat(modelPath)
		switch {
		case err == nil:
			rec, err := s.loader.Load(modelPath)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					c.remove(modelPath)
					continue
				}
				return fmt.Errorf("load %s: %w", modelPath, err)
			}
			c.upsert(rec)
		case errors.Is(err, fs.ErrNotExist):
			c.remove(modelPath)
		default:
			return fmt.Errorf("stat %s: %w", modelPath, err)
		}
	}

	return nil
}
