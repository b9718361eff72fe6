// Package metrics registers Prometheus instrumentation for the hours engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	RecomputeRuns    prometheus.Counter
	RecomputeSeconds prometheus.Histogram
	SessionsPaired   prometheus.Counter
	FlagsRaised      *prometheus.CounterVec
	Collisions       prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RecomputeRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hours_recompute_runs_total",
			Help: "Total number of recomputation runs executed",
		}),
		RecomputeSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hours_recompute_duration_seconds",
			Help:    "Wall time of recomputation runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		SessionsPaired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hours_sessions_paired_total",
			Help: "Work sessions successfully paired from raw punches",
		}),
		FlagsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hours_inconsistency_flags_total",
			Help: "Inconsistency flags raised, by kind",
		}, []string{"kind"}),
		Collisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hours_session_collisions_total",
			Help: "Duplicate sessions resolved for the same employee and work date",
		}),
	}
}

// ObserveRun records one completed recomputation.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RecomputeRuns.Inc()
	m.RecomputeSeconds.Observe(d.Seconds())
}

// AddSessions counts paired sessions.
func (m *Metrics) AddSessions(n int) {
	if m == nil {
		return
	}
	m.SessionsPaired.Add(float64(n))
}

// FlagRaised counts one raised flag by kind.
func (m *Metrics) FlagRaised(kind string) {
	if m == nil {
		return
	}
	m.FlagsRaised.WithLabelValues(kind).Inc()
}

// CollisionResolved counts one duplicate-session resolution.
func (m *Metrics) CollisionResolved() {
	if m == nil {
		return
	}
	m.Collisions.Inc()
}
