package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "employee_management"

// Recount outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
)

// Metrics holds every Prometheus collector the service exports.
type Metrics struct {
	Registry *prometheus.Registry

	RecountsTotal       *prometheus.CounterVec
	ReconcileDuration   prometheus.Histogram
	ReconcileDriftTotal *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, so tests can build as
// many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RecountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "counter",
			Name:      "recounts_total",
			Help:      "Counter recounts by target kind and outcome.",
		}, []string{"target", "outcome"}), // outcome: applied, skipped
		ReconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "counter",
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time of a full counter reconciliation run.",
			Buckets:   prometheus.DefBuckets,
		}),
		ReconcileDriftTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "counter",
			Name:      "reconcile_drift_total",
			Help:      "Stored counters found stale and repaired by reconciliation.",
		}, []string{"target"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveRecount implements the counter engine's recorder.
func (m *Metrics) ObserveRecount(target, outcome string) {
	m.RecountsTotal.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) ObserveDrift(target string) {
	m.ReconcileDriftTotal.WithLabelValues(target).Inc()
}

func (m *Metrics) ObserveReconcile(seconds float64) {
	m.ReconcileDuration.Observe(seconds)
}
