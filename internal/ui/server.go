// Package ui provides the web-based trace panel for simtrace.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/simtrace/internal/dataset"
	"github.com/leapstack-labs/simtrace/internal/ui/features/traceview"
	"github.com/leapstack-labs/simtrace/internal/ui/metrics"
	"github.com/leapstack-labs/simtrace/internal/ui/notifier"
	"github.com/leapstack-labs/simtrace/internal/ui/resources"
	"github.com/leapstack-labs/simtrace/internal/ui/router"
)

const reloadDebounce = 100 * time.Millisecond

// Server is the main UI server.
type Server struct {
	registry     *traceview.Registry
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	datasetPath  string
	logger       *slog.Logger
	notifier     *notifier.Notifier
	metrics      *metrics.Registry
}

// Config holds configuration for the UI server.
type Config struct {
	// DatasetPath is reloaded on change. Empty or "builtin" disables watching.
	DatasetPath   string
	Dataset       *dataset.Compiled
	Port          int
	Watch         bool
	SessionSecret string
	Logger        *slog.Logger
	Metrics       *metrics.Registry
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewRegistry()
	}

	s := &Server{
		registry:     traceview.NewRegistry(cfg.Dataset),
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		datasetPath:  cfg.DatasetPath,
		logger:       logger,
		notifier:     notifier.New(),
		metrics:      m,
	}
	m.DatasetNodes.Set(float64(cfg.Dataset.Graph.Len()))
	m.DatasetEdges.Set(float64(len(cfg.Dataset.Graph.Edges())))
	return s
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, router.Deps{
		Registry:     s.registry,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Metrics:      s.metrics,
		Logger:       s.logger,
		IsDev:        s.IsDev(),
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher if enabled
	if s.watch && s.watchable() {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true when static assets are served from disk.
func (s *Server) IsDev() bool {
	return resources.Dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Registry returns the per-session view registry.
func (s *Server) Registry() *traceview.Registry {
	return s.registry
}

func (s *Server) watchable() bool {
	return s.datasetPath != "" && s.datasetPath != dataset.BuiltinName
}

// Reload reads the dataset file again and swaps it in. A failed reload keeps
// the previous graph and reports the error to connected clients.
func (s *Server) Reload() error {
	d, err := dataset.Load(s.datasetPath)
	var compiled *dataset.Compiled
	if err == nil {
		compiled, err = d.Compile()
	}

	current := s.registry.Dataset()
	if err != nil {
		s.logger.Error("dataset reload failed", "path", s.datasetPath, "error", err)
		s.registry.SetError(err.Error())
		s.metrics.RecordDataset("error", current.Graph.Len(), len(current.Graph.Edges()))
		s.notifier.Broadcast(notifier.Event{Kind: notifier.DatasetError, Dataset: current.Name, Message: err.Error()})
		return err
	}

	for _, w := range compiled.Warnings {
		s.logger.Warn("dataset warning", "dataset", compiled.Name, "warning", w)
	}
	s.registry.Replace(compiled)
	s.metrics.RecordDataset("success", compiled.Graph.Len(), len(compiled.Graph.Edges()))
	s.logger.Info("dataset reloaded", "dataset", compiled.Name, "nodes", compiled.Graph.Len())
	s.notifier.Broadcast(notifier.Event{Kind: notifier.DatasetReloaded, Dataset: compiled.Name})
	return nil
}

// watchFiles watches the dataset file. Editors often replace the file rather
// than write it, so the parent directory is watched and events are filtered
// by name.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.datasetPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch dataset directory", "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.logger.Debug("dataset changed, reloading", "file", event.Name)
				_ = s.Reload()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
