package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.ClicksTotal == nil {
		t.Error("ClicksTotal not initialized")
	}
	if r.ClassifyDuration == nil {
		t.Error("ClassifyDuration not initialized")
	}
	if r.DatasetReloadsTotal == nil {
		t.Error("DatasetReloadsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestRecordClick(t *testing.T) {
	r := NewRegistry()

	r.RecordClick("selected")
	r.RecordClick("selected")
	r.RecordClick("unknown")

	counter, err := r.ClicksTotal.GetMetricWithLabelValues("selected")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Counter value = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordDataset(t *testing.T) {
	r := NewRegistry()

	r.RecordDataset("success", 13, 19)

	var metric dto.Metric
	if err := r.DatasetNodes.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 13 {
		t.Errorf("DatasetNodes = %v, want 13", metric.Gauge.GetValue())
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordDrag("moved")
	r.RecordClassify(50 * time.Microsecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`simtrace_drags_total{result="moved"} 1`,
		"simtrace_classify_duration_seconds_count 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
