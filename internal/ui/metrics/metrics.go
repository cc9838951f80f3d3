// Package metrics exposes Prometheus metrics for the trace UI.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the UI server.
type Registry struct {
	// Interaction Metrics
	ClicksTotal  *prometheus.CounterVec
	DragsTotal   *prometheus.CounterVec
	ResetsTotal  prometheus.Counter
	PanelToggles *prometheus.CounterVec

	// Trace Metrics
	ClassifyDuration prometheus.Histogram
	ActiveViews      prometheus.Gauge
	SSEClients       prometheus.Gauge

	// Dataset Metrics
	DatasetReloadsTotal *prometheus.CounterVec
	DatasetNodes        prometheus.Gauge
	DatasetEdges        prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	r := &Registry{registry: reg}
	r.initInteractionMetrics()
	r.initTraceMetrics()
	r.initDatasetMetrics()
	return r
}

func (r *Registry) initInteractionMetrics() {
	r.ClicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtrace_clicks_total",
			Help: "Node clicks by outcome",
		},
		[]string{"result"},
	)

	r.DragsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtrace_drags_total",
			Help: "Node drags by outcome",
		},
		[]string{"result"},
	)

	r.ResetsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "simtrace_layout_resets_total",
			Help: "Layout resets",
		},
	)

	r.PanelToggles = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtrace_panel_toggles_total",
			Help: "Panel open and close actions",
		},
		[]string{"action"},
	)
}

func (r *Registry) initTraceMetrics() {
	r.ClassifyDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simtrace_classify_duration_seconds",
			Help:    "Time to classify the graph for one frame",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)

	r.ActiveViews = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "simtrace_active_views",
			Help: "Number of per-session views held in memory",
		},
	)

	r.SSEClients = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "simtrace_sse_clients",
			Help: "Number of connected update streams",
		},
	)
}

func (r *Registry) initDatasetMetrics() {
	r.DatasetReloadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtrace_dataset_reloads_total",
			Help: "Dataset reloads by outcome",
		},
		[]string{"status"},
	)

	r.DatasetNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "simtrace_dataset_nodes",
			Help: "Nodes in the served graph",
		},
	)

	r.DatasetEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "simtrace_dataset_edges",
			Help: "Edges in the served graph",
		},
	)
}

// RecordClick counts a click. result is selected, cleared or unknown.
func (r *Registry) RecordClick(result string) {
	r.ClicksTotal.WithLabelValues(result).Inc()
}

// RecordDrag counts a drag. result is moved or unknown.
func (r *Registry) RecordDrag(result string) {
	r.DragsTotal.WithLabelValues(result).Inc()
}

// RecordClassify observes the time taken to build one frame.
func (r *Registry) RecordClassify(d time.Duration) {
	r.ClassifyDuration.Observe(d.Seconds())
}

// RecordDataset records a reload outcome and the size of the served graph.
func (r *Registry) RecordDataset(status string, nodes, edges int) {
	r.DatasetReloadsTotal.WithLabelValues(status).Inc()
	r.DatasetNodes.Set(float64(nodes))
	r.DatasetEdges.Set(float64(edges))
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
