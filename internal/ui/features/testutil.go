// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/simtrace/internal/dataset"
	"github.com/leapstack-labs/simtrace/internal/testutil"
	"github.com/leapstack-labs/simtrace/internal/ui/metrics"
	"github.com/leapstack-labs/simtrace/internal/ui/notifier"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Dataset      *dataset.Compiled
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Metrics      *metrics.Registry
	Logger       *slog.Logger
}

// SetupTestFixture creates a fixture serving the diamond scenario dataset.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	return &TestFixture{
		Dataset:      testutil.CompileScenario(t),
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		Metrics:      metrics.NewRegistry(),
		Logger:       testutil.NewTestLogger(t),
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) (*http.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return r.WithContext(ctx), cancel
}

// WithCookies copies the cookies set on a previous response onto r.
func WithCookies(r *http.Request, from *http.Response) *http.Request {
	for _, c := range from.Cookies() {
		r.AddCookie(c)
	}
	return r
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
