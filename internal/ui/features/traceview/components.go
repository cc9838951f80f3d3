package traceview

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/simtrace/internal/trace"
	"github.com/leapstack-labs/simtrace/internal/ui/resources"
)

// Node box size in pixels. Edges connect box centres.
const (
	nodeWidth  = 200.0
	nodeHeight = 64.0
	canvasPad  = 40.0
)

// PageData is everything the trace page renders.
type PageData struct {
	Title   string
	Dataset string
	Frame   trace.Frame
	Error   string
	IsDev   bool
}

// TracePage renders the full HTML document.
func TracePage(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &htmlWriter{w: w}
		b.printf(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		b.printf(`<title>%s - simtrace</title>`, esc(d.Title))
		b.printf(`<link rel="stylesheet" href="%s">`, resources.StaticPath("trace.css"))
		b.printf(`<script type="module" src="%s"></script>`, datastarScript)
		b.printf(`</head><body>`)
		b.printf(`<main id="trace-app" data-signals="{dx: 0, dy: 0, sx: 0, sy: 0, selected: '%s'}" data-init="@get('/trace/updates')">`,
			jsString(d.Frame.Selected))
		if d.IsDev {
			b.printf(`<div data-init="@get('/reload')"></div>`)
		}
		if b.err != nil {
			return b.err
		}
		if err := TracePanel(d).Render(ctx, w); err != nil {
			return err
		}
		b.printf(`</main></body></html>`)
		return b.err
	})
}

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// TracePanel renders the patchable panel. It is the target of every SSE
// update.
func TracePanel(d PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		b := &htmlWriter{w: w}
		f := d.Frame

		if !f.Visible {
			b.printf(`<section id="trace-panel" class="trace-panel closed">`)
			b.printf(`<button id="trace-open" data-on:click="@post('/trace/open')">Show traceability</button>`)
			b.printf(`</section>`)
			return b.err
		}

		b.printf(`<section id="trace-panel" class="trace-panel" data-dataset="%s">`, esc(d.Dataset))
		if d.Error != "" {
			b.printf(`<div class="trace-banner" role="alert">Reload failed: %s</div>`, esc(d.Error))
		}
		b.printf(`<div class="trace-toolbar">`)
		b.printf(`<span class="hint" id="trace-hint">%s</span>`, esc(f.Hint))
		b.printf(`<button id="trace-reset" data-on:click="@post('/trace/reset')">Reset layout</button>`)
		b.printf(`<button id="trace-close" data-on:click="@post('/trace/close')">Close</button>`)
		b.printf(`</div>`)

		width, height := canvasSize(f)
		b.printf(`<div class="trace-canvas" style="width:%gpx;height:%gpx">`, width, height)
		writeEdges(b, f, width, height)
		for _, n := range f.Nodes {
			writeNode(b, n)
		}
		b.printf(`</div></section>`)
		return b.err
	})
}

func canvasSize(f trace.Frame) (float64, float64) {
	var w, h float64
	for _, n := range f.Nodes {
		w = max(w, n.Position.X+nodeWidth)
		h = max(h, n.Position.Y+nodeHeight)
	}
	return w + canvasPad, h + canvasPad
}

func writeEdges(b *htmlWriter, f trace.Frame, width, height float64) {
	pos := make(map[string]trace.Position, len(f.Nodes))
	for _, n := range f.Nodes {
		pos[n.ID] = n.Position
	}

	b.printf(`<svg width="%g" height="%g" aria-hidden="true">`, width, height)
	for _, e := range f.Edges {
		src, dst := pos[e.Source], pos[e.Target]
		class := "edge edge-" + string(e.State)
		if e.Animated {
			class += " animated"
		}
		b.printf(`<line id="edge-%s" class="%s" x1="%g" y1="%g" x2="%g" y2="%g"></line>`,
			esc(e.ID), class,
			src.X+nodeWidth/2, src.Y+nodeHeight/2,
			dst.X+nodeWidth/2, dst.Y+nodeHeight/2)
	}
	b.printf(`</svg>`)
}

func writeNode(b *htmlWriter, n trace.NodeView) {
	path := "/trace/nodes/" + jsString(pathEscape(n.ID))
	b.printf(`<div id="node-%s" class="node node-%s node-%s" style="left:%gpx;top:%gpx" draggable="true"`,
		esc(n.ID), esc(string(n.Category)), n.State, n.Position.X, n.Position.Y)
	b.printf(` title="%s"`, esc(n.Payload.Description))
	b.printf(` data-on:click="@post('%s/select')"`, path)
	b.printf(` data-on:dragstart="$sx = evt.clientX; $sy = evt.clientY"`)
	b.printf(` data-on:dragend="$dx = evt.clientX - $sx; $dy = evt.clientY - $sy; @post('%s/drag')">`, path)
	b.printf(`<div class="label">%s</div>`, esc(n.Label()))
	if v := valueLine(n.Payload); v != "" {
		b.printf(`<div class="value">%s</div>`, esc(v))
	}
	b.printf(`</div>`)
}

// valueLine formats "12 s (target 10 s)" from the payload.
func valueLine(p trace.Payload) string {
	withUnit := func(v string) string {
		if p.Unit == "" {
			return v
		}
		return v + " " + p.Unit
	}

	var parts []string
	if p.Value != "" {
		parts = append(parts, withUnit(p.Value))
	}
	if p.Target != "" {
		parts = append(parts, "(target "+withUnit(p.Target)+")")
	}
	return strings.Join(parts, " ")
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}

// jsString makes s safe inside a single-quoted JavaScript string within an
// HTML attribute.
func jsString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return esc(s)
}

// htmlWriter keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (b *htmlWriter) printf(format string, args ...any) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}
