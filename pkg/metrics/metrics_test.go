package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestDistributionMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDistributionMetrics(reg)

	m.ObserveUpload("csv", ResultSuccess, 120*time.Millisecond)
	m.ObserveUpload("xlsx", ResultRejected, 10*time.Millisecond)
	m.ObserveAllocation(map[string]int{"agent-a": 3, "agent-b": 2})
	m.ObserveAllocation(map[string]int{"agent-a": 1})
	m.IncReassignment(ResultSuccess)
	m.AddDeleted(4)
	m.AddDeleted(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	assertCounter(t, mfs, "list_uploads_total", "result", ResultSuccess, 1)
	assertCounter(t, mfs, "list_uploads_total", "result", ResultRejected, 1)
	assertCounter(t, mfs, "list_rows_distributed_total", "agent_id", "agent-a", 4)
	assertCounter(t, mfs, "list_rows_distributed_total", "agent_id", "agent-b", 2)
	assertCounter(t, mfs, "list_item_reassignments_total", "result", ResultSuccess, 1)

	if got, err := fetchHistogramSum(mfs, "list_upload_duration_seconds", "format", "csv"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	deleted := findMetricFamily(mfs, "list_items_deleted_total")
	if deleted == nil || deleted.GetMetric()[0].GetCounter().GetValue() != 4 {
		t.Fatalf("expected 4 deleted items, got %v", deleted)
	}

	pool := findMetricFamily(mfs, "list_upload_agent_pool_size")
	if pool == nil || pool.GetMetric()[0].GetHistogram().GetSampleCount() != 2 {
		t.Fatalf("expected two pool size samples, got %v", pool)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *DistributionMetrics
	m.ObserveUpload("csv", ResultSuccess, time.Second)
	m.ObserveAllocation(map[string]int{"a": 1})
	m.IncReassignment(ResultError)
	m.AddDeleted(1)

	unregistered := NewDistributionMetrics(nil)
	unregistered.ObserveUpload("csv", ResultSuccess, time.Second)

	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)
	h.Observe(http.MethodGet, "/api/admin/v1/lists", http.StatusOK, 5*time.Millisecond)
	h.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	assertCounter(t, mfs, "http_requests_total", "route", "/api/admin/v1/lists", 1)
	assertCounter(t, mfs, "http_requests_total", "route", unknownLabelName, 1)
}

func assertCounter(t *testing.T, mfs []*dto.MetricFamily, name, label, value string, want float64) {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, label, value)
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	if got != want {
		t.Fatalf("expected %s{%s=%q}=%v, got %v", name, label, value, want, got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
