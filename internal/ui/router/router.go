// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	traceFeature "github.com/leapstack-labs/simtrace/internal/ui/features/traceview"
	"github.com/leapstack-labs/simtrace/internal/ui/metrics"
	"github.com/leapstack-labs/simtrace/internal/ui/notifier"
	"github.com/leapstack-labs/simtrace/internal/ui/resources"
)

// Deps are the shared dependencies handed to feature routes.
type Deps struct {
	Registry     *traceFeature.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Metrics      *metrics.Registry
	Logger       *slog.Logger
	IsDev        bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Prometheus scrape endpoint
	router.Handle("/metrics", deps.Metrics.Handler())

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/trace", http.StatusFound)
	})

	// Feature routes
	return traceFeature.SetupRoutes(router, deps.Registry, deps.SessionStore, deps.Notifier, deps.Metrics, deps.Logger, deps.IsDev)
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
