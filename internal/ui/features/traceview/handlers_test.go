package traceview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/simtrace/internal/ui/features"
	"github.com/leapstack-labs/simtrace/internal/ui/notifier"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestRouter(t *testing.T) (http.Handler, *Registry, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	registry := NewRegistry(fixture.Dataset)

	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, registry, fixture.SessionStore, fixture.Notifier, fixture.Metrics, fixture.Logger, false))
	return r, registry, fixture
}

// client keeps the session cookie between requests like a browser would.
type client struct {
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return rec
}

func nodeClass(id, category, state string) string {
	return `id="node-` + id + `" class="node node-` + category + ` node-` + state + `"`
}

// =============================================================================
// TracePage Tests
// =============================================================================

func TestTracePage(t *testing.T) {
	router, _, _ := setupTestRouter(t)
	c := &client{handler: router}

	rec := c.do(http.MethodGet, "/trace", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.NotEmpty(t, c.cookies, "first visit issues a session cookie")

	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Traceability - simtrace</title>",
		"/static/trace.css",
		"data-init=\"@get('/trace/updates')\"",
		`id="trace-panel"`,
		nodeClass("K", "kpi", "normal"),
		nodeClass("P1", "param", "normal"),
		nodeClass("M", "model", "normal"),
		`id="edge-K-P1" class="edge edge-neutral"`,
		"Folding time",
		"4.2 s (target 4.0 s)",
		"Click a node to trace its upstream and downstream dependencies.",
		"left:250px;top:200px",
	} {
		assert.Contains(t, body, want)
	}
}

// =============================================================================
// Interaction Tests - each action answers with a panel patch
// =============================================================================

func TestSelectNode_Scenarios(t *testing.T) {
	router, _, fixture := setupTestRouter(t)
	c := &client{handler: router}
	c.do(http.MethodGet, "/trace", "")

	// Selecting a parameter highlights the KPI above and the model below.
	rec := c.do(http.MethodPost, "/trace/nodes/P1/select", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, nodeClass("P1", "param", "selected"))
	assert.Contains(t, body, nodeClass("K", "kpi", "highlighted"))
	assert.Contains(t, body, nodeClass("M", "model", "highlighted"))
	assert.Contains(t, body, nodeClass("P2", "param", "dimmed"))
	assert.Contains(t, body, `id="edge-K-P1" class="edge edge-related animated"`)
	assert.Contains(t, body, `id="edge-P1-M" class="edge edge-related animated"`)
	assert.Contains(t, body, `id="edge-K-P2" class="edge edge-neutral"`)
	assert.Contains(t, body, "Motor power: 1 upstream, 1 downstream.")
	assert.Contains(t, body, `"selected":"P1"`)

	// Clicking it again clears the selection.
	rec = c.do(http.MethodPost, "/trace/nodes/P1/select", "")
	body = rec.Body.String()
	assert.Contains(t, body, nodeClass("K", "kpi", "normal"))
	assert.Contains(t, body, nodeClass("P1", "param", "normal"))
	assert.Contains(t, body, nodeClass("P2", "param", "normal"))
	assert.NotContains(t, body, "edge-related")
	assert.Contains(t, body, `"selected":""`)

	// Selecting the KPI relates every node through its downstream closure.
	rec = c.do(http.MethodPost, "/trace/nodes/K/select", "")
	body = rec.Body.String()
	assert.Contains(t, body, nodeClass("K", "kpi", "selected"))
	assert.Contains(t, body, nodeClass("P2", "param", "highlighted"))
	assert.NotContains(t, body, "node-dimmed")
	assert.Equal(t, 4, strings.Count(body, "edge-related animated"))

	assert.Equal(t, 2.0, promtestutil.ToFloat64(fixture.Metrics.ClicksTotal.WithLabelValues("selected")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(fixture.Metrics.ClicksTotal.WithLabelValues("cleared")))
}

func TestSelectNode_UnknownNodeIsNoOp(t *testing.T) {
	router, _, _ := setupTestRouter(t)
	c := &client{handler: router}

	c.do(http.MethodPost, "/trace/nodes/M/select", "")
	rec := c.do(http.MethodPost, "/trace/nodes/ghost/select", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, nodeClass("M", "model", "selected"), "selection is unchanged")
	assert.Contains(t, body, `"selected":"M"`)
}

func TestDragAndReset(t *testing.T) {
	router, _, _ := setupTestRouter(t)
	c := &client{handler: router}

	c.do(http.MethodPost, "/trace/nodes/K/select", "")

	rec := c.do(http.MethodPost, "/trace/nodes/M/drag", `{"dx": 10, "dy": -5}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "left:510px;top:95px")
	assert.Contains(t, body, nodeClass("K", "kpi", "selected"), "dragging keeps the selection")

	rec = c.do(http.MethodPost, "/trace/nodes/M/drag", `{"dx": -10, "dy": 5}`)
	assert.Contains(t, rec.Body.String(), "left:500px;top:100px")

	c.do(http.MethodPost, "/trace/nodes/P2/drag", `{"dx": 30, "dy": 30}`)
	rec = c.do(http.MethodPost, "/trace/reset", "")
	body = rec.Body.String()
	assert.Contains(t, body, "left:250px;top:200px", "reset restores the default position")
	assert.NotContains(t, body, "node-selected", "reset clears the selection")
	assert.Contains(t, body, "Click a node to trace")
}

func TestDragNode_BadSignals(t *testing.T) {
	router, _, _ := setupTestRouter(t)
	c := &client{handler: router}

	rec := c.do(http.MethodPost, "/trace/nodes/M/drag", `{not json`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "console.error")
	assert.Contains(t, body, "left:500px;top:100px", "position is unchanged")
}

func TestCloseAndOpen(t *testing.T) {
	router, _, _ := setupTestRouter(t)
	c := &client{handler: router}

	c.do(http.MethodPost, "/trace/nodes/P2/select", "")
	c.do(http.MethodPost, "/trace/nodes/P2/drag", `{"dx": 5, "dy": 5}`)

	rec := c.do(http.MethodPost, "/trace/close", "")
	body := rec.Body.String()
	assert.Contains(t, body, `class="trace-panel closed"`)
	assert.Contains(t, body, `id="trace-open"`)
	assert.NotContains(t, body, `id="node-P2"`)

	rec = c.do(http.MethodPost, "/trace/open", "")
	body = rec.Body.String()
	assert.Contains(t, body, nodeClass("P2", "param", "selected"), "selection survives close")
	assert.Contains(t, body, "left:255px;top:205px", "layout survives close")
}

func TestSessionsAreIndependent(t *testing.T) {
	router, registry, _ := setupTestRouter(t)
	alice := &client{handler: router}
	bob := &client{handler: router}

	alice.do(http.MethodPost, "/trace/nodes/K/select", "")
	rec := bob.do(http.MethodGet, "/trace", "")

	assert.NotContains(t, rec.Body.String(), "node-selected")
	assert.Equal(t, 2, registry.Len())
}

func TestFrameJSON(t *testing.T) {
	router, _, _ := setupTestRouter(t)
	c := &client{handler: router}

	c.do(http.MethodPost, "/trace/nodes/M/select", "")
	rec := c.do(http.MethodGet, "/api/trace/frame", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `"dataset": "diamond"`)
	assert.Contains(t, body, `"selected": "M"`)
	assert.Contains(t, body, `"visible": true`)
}

// =============================================================================
// Handler Tests - called directly without the router
// =============================================================================

func TestHandlers_SessionKeepsSelectionAcrossRequests(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	registry := NewRegistry(fixture.Dataset)
	h := NewHandlers(registry, fixture.SessionStore, fixture.Notifier, fixture.Metrics, fixture.Logger, false)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/trace/nodes/P2/select", nil), "id", "P2")
	first := httptest.NewRecorder()
	h.SelectNode(first, req)

	require.Equal(t, http.StatusOK, first.Code)
	require.NotEmpty(t, first.Result().Cookies(), "select issues a session cookie")
	assert.Contains(t, first.Body.String(), nodeClass("P2", "param", "selected"))

	req = httptest.NewRequest(http.MethodPost, "/trace/nodes/M/drag", strings.NewReader(`{"dx": 1, "dy": 2}`))
	req = features.WithCookies(features.RequestWithPathParam(req, "id", "M"), first.Result())
	second := httptest.NewRecorder()
	h.DragNode(second, req)

	body := second.Body.String()
	assert.Contains(t, body, nodeClass("P2", "param", "selected"), "the same session keeps its selection")
	assert.Contains(t, body, "left:501px;top:102px")
	assert.Equal(t, 1, registry.Len())

	// Without the cookie the request lands in a fresh view.
	third := httptest.NewRecorder()
	h.SelectNode(third, features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/trace/nodes/K/select", nil), "id", "K"))
	assert.NotContains(t, third.Body.String(), nodeClass("P2", "param", "selected"))
	assert.Equal(t, 2, registry.Len())
}

func TestHandlers_EscapedNodeParam(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := NewHandlers(NewRegistry(fixture.Dataset), fixture.SessionStore, fixture.Notifier, fixture.Metrics, fixture.Logger, false)

	rec := httptest.NewRecorder()
	h.SelectNode(rec, features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/trace/nodes/x/select", nil), "id", "P%31"))

	assert.Contains(t, rec.Body.String(), nodeClass("P1", "param", "selected"))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(fixture.Metrics.ClicksTotal.WithLabelValues("selected")))
}

// =============================================================================
// TracePageUpdates Tests - SSE endpoint for live updates only
// =============================================================================

func TestTracePageUpdates_SendsPanelOnBroadcast(t *testing.T) {
	router, _, fixture := setupTestRouter(t)

	req, cancel := features.RequestWithTimeout(httptest.NewRequest(http.MethodGet, "/trace/updates", nil), 300*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(rec, req)
		close(done)
	}()

	// Wait a bit then trigger broadcast (simulating a reload)
	time.Sleep(50 * time.Millisecond)
	fixture.Notifier.Broadcast(notifier.Event{Kind: notifier.DatasetReloaded, Dataset: "diamond"})

	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event: datastar-patch-elements"), 1)
	assert.Contains(t, body, `id="trace-panel"`)
}

func TestTracePageUpdates_NoInitialState(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req, cancel := features.RequestWithTimeout(httptest.NewRequest(http.MethodGet, "/trace/updates", nil), 50*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"), "should have no SSE events without broadcast")
}

func TestTracePage_ShowsReloadError(t *testing.T) {
	router, registry, _ := setupTestRouter(t)
	c := &client{handler: router}

	registry.SetError(`invalid dataset: nodes[0].label: field is required`)
	rec := c.do(http.MethodGet, "/trace", "")

	assert.Contains(t, rec.Body.String(), `role="alert"`)
	assert.Contains(t, rec.Body.String(), "nodes[0].label: field is required")
}
