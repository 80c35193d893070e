package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upload outcomes used as the "result" label.
const (
	ResultSuccess    = "success"
	ResultRejected   = "rejected"
	ResultNoAgents   = "no_agents"
	ResultError      = "error"
	ResultNotFound   = "not_found"
	unknownLabelName = "unknown"
)

// DistributionMetrics records upload and reassignment activity.
type DistributionMetrics struct {
	uploads       *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rows          *prometheus.CounterVec
	poolSize      prometheus.Histogram
	reassignments *prometheus.CounterVec
	deletedItems  prometheus.Counter
}

// NewDistributionMetrics registers the distribution metrics on the provided registerer.
func NewDistributionMetrics(reg prometheus.Registerer) *DistributionMetrics {
	if reg == nil {
		return &DistributionMetrics{}
	}
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_uploads_total",
		Help: "Contact list uploads by outcome.",
	}, []string{"result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "list_upload_duration_seconds",
		Help:    "Time spent parsing, allocating and storing an upload.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_rows_distributed_total",
		Help: "Line items assigned to each agent at upload time.",
	}, []string{"agent_id"})
	poolSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "list_upload_agent_pool_size",
		Help:    "Number of agents selected per upload.",
		Buckets: []float64{1, 2, 3, 4, 5},
	})
	reassignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_item_reassignments_total",
		Help: "Line item reassignments by outcome.",
	}, []string{"result"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "list_items_deleted_total",
		Help: "Line items removed through batch deletion.",
	})
	reg.MustRegister(uploads, duration, rows, poolSize, reassignments, deleted)
	return &DistributionMetrics{
		uploads:       uploads,
		duration:      duration,
		rows:          rows,
		poolSize:      poolSize,
		reassignments: reassignments,
		deletedItems:  deleted,
	}
}

// ObserveUpload records the upload outcome and its duration.
func (m *DistributionMetrics) ObserveUpload(format, result string, elapsed time.Duration) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(result)).Inc()
	m.duration.WithLabelValues(normalizeLabel(format)).Observe(elapsed.Seconds())
}

// ObserveAllocation records the per-agent quotas of a stored plan.
func (m *DistributionMetrics) ObserveAllocation(quotas map[string]int) {
	if m == nil || m.rows == nil {
		return
	}
	m.poolSize.Observe(float64(len(quotas)))
	for agentID, quota := range quotas {
		m.rows.WithLabelValues(normalizeLabel(agentID)).Add(float64(quota))
	}
}

// IncReassignment counts a reassignment attempt.
func (m *DistributionMetrics) IncReassignment(result string) {
	if m == nil || m.reassignments == nil {
		return
	}
	m.reassignments.WithLabelValues(normalizeLabel(result)).Inc()
}

// AddDeleted counts items removed by a batch delete.
func (m *DistributionMetrics) AddDeleted(n int64) {
	if m == nil || m.deletedItems == nil || n <= 0 {
		return
	}
	m.deletedItems.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return unknownLabelName
	}
	return value
}
