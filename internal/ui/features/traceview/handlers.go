// Package traceview provides the interactive traceability view for the UI.
package traceview

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/simtrace/internal/trace"
	"github.com/leapstack-labs/simtrace/internal/ui/metrics"
	"github.com/leapstack-labs/simtrace/internal/ui/notifier"
)

const (
	sessionName    = "simtrace"
	sessionViewKey = "view"
)

// DragSignals are the signals sent with a drag.
type DragSignals struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Handlers provides HTTP handlers for the trace feature.
type Handlers struct {
	registry     *Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	metrics      *metrics.Registry
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	registry *Registry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	m *metrics.Registry,
	logger *slog.Logger,
	isDev bool,
) *Handlers {
	return &Handlers{
		registry:     registry,
		sessionStore: sessionStore,
		notifier:     notify,
		metrics:      m,
		logger:       logger,
		isDev:        isDev,
	}
}

// session returns the caller's view, issuing a session cookie on first use.
// It must run before any SSE output since it may write a header.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *Session {
	sess, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("discarding unreadable session", "error", err)
	}

	id, _ := sess.Values[sessionViewKey].(string)
	if id == "" {
		id = uuid.NewString()
		sess.Values[sessionViewKey] = id
		if err := sess.Save(r, w); err != nil {
			h.logger.Error("failed to save session", "error", err)
		}
	}

	s := h.registry.Get(id)
	h.metrics.ActiveViews.Set(float64(h.registry.Len()))
	return s
}

// pageData classifies the view and assembles what the templates render.
func (h *Handlers) pageData(s *Session) PageData {
	start := time.Now()
	var f trace.Frame
	_ = s.Do(func(v *trace.View) error {
		f = v.Frame()
		return nil
	})
	h.metrics.RecordClassify(time.Since(start))

	c := h.registry.Dataset()
	return PageData{
		Title:   "Traceability",
		Dataset: c.Name,
		Frame:   f,
		Error:   h.registry.LastError(),
		IsDev:   h.isDev,
	}
}

// patch sends the panel and the selected signal.
func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, s *Session) {
	d := h.pageData(s)
	if err := sse.PatchElementTempl(TracePanel(d)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.MarshalAndPatchSignals(map[string]any{"selected": d.Frame.Selected}); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// TracePage renders the trace page with full content.
func (h *Handlers) TracePage(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := TracePage(h.pageData(s)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// TracePageUpdates is the long-lived SSE endpoint for the trace page.
// It pushes the panel again whenever the dataset is reloaded or fails to
// reload. Initial state is rendered by TracePage.
func (h *Handlers) TracePageUpdates(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)
	h.metrics.SSEClients.Inc()
	defer h.metrics.SSEClients.Dec()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-updates:
			if !ok {
				return
			}
			h.logger.Debug("pushing trace update", "event", e.Kind, "dataset", e.Dataset)
			h.patch(sse, s)
		}
	}
}

func nodeParam(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// SelectNode toggles the selection on a node.
func (h *Handlers) SelectNode(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	id := nodeParam(r)

	var selected bool
	err := s.Do(func(v *trace.View) error {
		if err := v.Click(id); err != nil {
			return err
		}
		selected = v.Selection().Is(id)
		return nil
	})
	switch {
	case errors.Is(err, trace.ErrUnknownNode):
		h.logger.Warn("click on unknown node", "node", id)
		h.metrics.RecordClick("unknown")
	case selected:
		h.metrics.RecordClick("selected")
	default:
		h.metrics.RecordClick("cleared")
	}

	h.patch(datastar.NewSSE(w, r), s)
}

// DragNode moves a node by the dx and dy signals.
func (h *Handlers) DragNode(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals DragSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		s := h.session(w, r)
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		h.patch(sse, s)
		return
	}

	s := h.session(w, r)
	id := nodeParam(r)

	err := s.Do(func(v *trace.View) error {
		return v.Drag(id, trace.Position{X: signals.DX, Y: signals.DY})
	})
	if err != nil {
		h.logger.Warn("drag on unknown node", "node", id, "error", err)
		h.metrics.RecordDrag("unknown")
	} else {
		h.metrics.RecordDrag("moved")
	}

	h.patch(datastar.NewSSE(w, r), s)
}

// ResetLayout restores default positions and clears the selection.
func (h *Handlers) ResetLayout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	_ = s.Do(func(v *trace.View) error {
		v.ResetLayout()
		return nil
	})
	h.metrics.ResetsTotal.Inc()
	h.patch(datastar.NewSSE(w, r), s)
}

// ClosePanel hides the view. Selection and layout are kept.
func (h *Handlers) ClosePanel(w http.ResponseWriter, r *http.Request) {
	h.togglePanel(w, r, false)
}

// OpenPanel shows the view again.
func (h *Handlers) OpenPanel(w http.ResponseWriter, r *http.Request) {
	h.togglePanel(w, r, true)
}

func (h *Handlers) togglePanel(w http.ResponseWriter, r *http.Request, open bool) {
	s := h.session(w, r)
	action := "close"
	_ = s.Do(func(v *trace.View) error {
		if open {
			action = "open"
			v.Open()
		} else {
			v.Close()
		}
		return nil
	})
	h.metrics.PanelToggles.WithLabelValues(action).Inc()
	h.patch(datastar.NewSSE(w, r), s)
}

// FrameJSON returns the caller's current frame as JSON.
func (h *Handlers) FrameJSON(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	d := h.pageData(s)

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Dataset string `json:"dataset"`
		Error   string `json:"error,omitempty"`
		trace.Frame
	}{d.Dataset, d.Error, d.Frame}); err != nil {
		h.logger.Error("failed to encode frame", "error", err)
	}
}
