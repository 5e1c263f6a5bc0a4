package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReportMetrics counts rendered artifacts and degraded image embeds.
type ReportMetrics struct {
	rendered      *prometheus.CounterVec
	embedFailures prometheus.Counter
}

func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	rendered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_rendered_total",
		Help: "Report artifacts rendered by kind and format.",
	}, []string{"kind", "format"})
	embedFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_image_embed_failures_total",
		Help: "Images replaced by a placeholder because embedding failed.",
	})
	reg.MustRegister(rendered, embedFailures)
	return &ReportMetrics{rendered: rendered, embedFailures: embedFailures}
}

func (m *ReportMetrics) IncRendered(kind, format string) {
	if m == nil || m.rendered == nil {
		return
	}
	m.rendered.WithLabelValues(normalizeLabel(kind), normalizeLabel(format)).Inc()
}

func (m *ReportMetrics) IncEmbedFailure() {
	if m == nil || m.embedFailures == nil {
		return
	}
	m.embedFailures.Inc()
}
