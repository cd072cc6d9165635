package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's Prometheus collectors.
type Metrics struct {
	Queries         *prometheus.CounterVec
	QueryDuration   prometheus.Histogram
	QueryResults    prometheus.Histogram
	SnapshotRecords *prometheus.GaugeVec
	SnapshotReloads *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keycard",
			Name:      "queries_total",
			Help:      "Entry queries by outcome (ok, invalid, error).",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keycard",
			Name:      "query_duration_seconds",
			Help:      "Time spent joining, filtering and flattening entries.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		QueryResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keycard",
			Name:      "query_result_rows",
			Help:      "Rows returned per successful query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		SnapshotRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "keycard",
			Name:      "snapshot_records",
			Help:      "Records in the current snapshot per collection.",
		}, []string{"collection"}),
		SnapshotReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keycard",
			Name:      "snapshot_reloads_total",
			Help:      "Snapshot reload attempts by result.",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "keycard",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(m.Queries, m.QueryDuration, m.QueryResults, m.SnapshotRecords, m.SnapshotReloads, m.RateLimited)
	return m
}

// ObserveQuery records one query outcome.
func (m *Metrics) ObserveQuery(outcome string, elapsed time.Duration, rows int) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(elapsed.Seconds())
	if outcome == "ok" {
		m.QueryResults.Observe(float64(rows))
	}
}

// ObserveReload records a reload attempt; counts is nil when it failed.
func (m *Metrics) ObserveReload(counts map[string]int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.SnapshotReloads.WithLabelValues("error").Inc()
		return
	}
	m.SnapshotReloads.WithLabelValues("ok").Inc()
	for collection, n := range counts {
		m.SnapshotRecords.WithLabelValues(collection).Set(float64(n))
	}
}
