package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpgradeMetrics records schema upgrade step outcomes.
type UpgradeMetrics struct {
	duration *prometheus.HistogramVec
	applied  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewUpgradeMetrics registers the upgrade metrics on the provided registerer.
func NewUpgradeMetrics(reg prometheus.Registerer) *UpgradeMetrics {
	if reg == nil {
		return &UpgradeMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schema_upgrade_step_duration_seconds",
		Help:    "Duration of schema upgrade steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_upgrade_step_applied_total",
		Help: "Schema upgrade steps applied.",
	}, []string{"step"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_upgrade_step_skipped_total",
		Help: "Schema upgrade steps skipped because they were already recorded.",
	}, []string{"step"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_upgrade_step_failure_total",
		Help: "Schema upgrade steps that failed and were rolled back.",
	}, []string{"step"})
	reg.MustRegister(duration, applied, skipped, failure)
	return &UpgradeMetrics{
		duration: duration,
		applied:  applied,
		skipped:  skipped,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named step.
func (m *UpgradeMetrics) ObserveDuration(step string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

func (m *UpgradeMetrics) IncApplied(step string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(step)).Inc()
}

func (m *UpgradeMetrics) IncSkipped(step string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(step)).Inc()
}

func (m *UpgradeMetrics) IncFailure(step string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(step)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
