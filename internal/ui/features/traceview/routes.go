package traceview

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/simtrace/internal/ui/metrics"
	"github.com/leapstack-labs/simtrace/internal/ui/notifier"
)

// SetupRoutes registers the trace feature routes.
func SetupRoutes(
	router chi.Router,
	registry *Registry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	m *metrics.Registry,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(registry, sessionStore, notify, m, logger, isDev)

	// Page route (full page render with content)
	router.Get("/trace", handlers.TracePage)

	// SSE route (live updates only)
	router.Get("/trace/updates", handlers.TracePageUpdates)

	// Actions answer with a panel patch
	router.Post("/trace/nodes/{id}/select", handlers.SelectNode)
	router.Post("/trace/nodes/{id}/drag", handlers.DragNode)
	router.Post("/trace/reset", handlers.ResetLayout)
	router.Post("/trace/close", handlers.ClosePanel)
	router.Post("/trace/open", handlers.OpenPanel)

	router.Get("/api/trace/frame", handlers.FrameJSON)

	return nil
}
