// Package server exposes a library over a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/catalog"
	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/handler"
)

const shutdownTimeout = 10 * time.Second

// Catalog is the part of the catalog service the API reads from.
type Catalog interface {
	AcquireSnapshot() (*catalog.Catalog, error)
	QueueUpdate(string)
	Invalidate()
	Stats() catalog.Stats
}

// Settings stores the active library's preferences.
type Settings interface {
	ActiveLibrary() (*config.Library, error)
	UpdateLibrary(config.Library) error
}

// ReloadFunc rebuilds the catalog and file handler after the models
// directory changed.
type ReloadFunc func() (Catalog, *handler.FileHandler, error)

type Server struct {
	mu       sync.RWMutex
	catalog  Catalog
	files    *handler.FileHandler
	settings Settings
	reload   ReloadFunc
	logger   *zap.Logger
	router   chi.Router
}

// New wires the API routes. reload may be nil when the models directory
// cannot change at runtime.
func New(cat Catalog, files *handler.FileHandler, settings Settings, reload ReloadFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		catalog:  cat,
		files:    files,
		settings: settings,
		reload:   reload,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(metricsMiddleware())

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/previews/*", s.preview)

	r.Route("/api", func(r chi.Router) {
		r.Get("/models", s.listModels)
		r.Get("/models/{id}", s.getModel)
		r.Post("/models/{id}/rename", s.renameModel)
		r.Post("/models/{id}/move", s.moveModel)
		r.Post("/models/{id}/json", s.saveAttributes)
		r.Post("/models/{id}/civitai/convert", s.convertCivitai)
		r.Post("/models/{id}/civitai/fix-thumbnail", s.fixThumbnail)
		r.Get("/base-models", s.baseModels)
		r.Get("/tags", s.tags)
		r.Get("/folders", s.folders)
		r.Get("/settings", s.getSettings)
		r.Post("/settings", s.saveSettings)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("Server stopped gracefully")
	return nil
}

func (s *Server) deps() (Catalog, *handler.FileHandler) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.files
}

func (s *Server) swap(cat Catalog, files *handler.FileHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = cat
	s.files = files
}
