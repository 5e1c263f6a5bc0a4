package metrics

import "github.com/prometheus/client_golang/prometheus"

// NumberingMetrics counts assigned numbers and collision retries per prefix.
type NumberingMetrics struct {
	assigned *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

func NewNumberingMetrics(reg prometheus.Registerer) *NumberingMetrics {
	if reg == nil {
		return &NumberingMetrics{}
	}
	assigned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "numbering_assigned_total",
		Help: "Registration and document numbers assigned.",
	}, []string{"prefix"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "numbering_retries_total",
		Help: "Number assignments retried after a unique-constraint collision.",
	}, []string{"prefix"})
	reg.MustRegister(assigned, retries)
	return &NumberingMetrics{assigned: assigned, retries: retries}
}

func (m *NumberingMetrics) IncAssigned(prefix string) {
	if m == nil || m.assigned == nil {
		return
	}
	m.assigned.WithLabelValues(normalizeLabel(prefix)).Inc()
}

func (m *NumberingMetrics) IncRetry(prefix string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(prefix)).Inc()
}
