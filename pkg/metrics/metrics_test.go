package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestUpgradeMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewUpgradeMetrics(reg)
	step := "add_topic_color"
	metrics.ObserveDuration(step, 250*time.Millisecond)
	metrics.IncApplied(step)
	metrics.IncSkipped(step)
	metrics.IncFailure(step)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, name := range []string{"schema_upgrade_step_applied_total", "schema_upgrade_step_skipped_total", "schema_upgrade_step_failure_total"} {
		if got, err := fetchCounterValue(mfs, name, "step", step); err != nil {
			t.Fatalf("fetch %s: %v", name, err)
		} else if got != 1 {
			t.Fatalf("expected %s=1, got %f", name, got)
		}
	}

	if got, err := fetchHistogramSum(mfs, "schema_upgrade_step_duration_seconds", "step", step); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNumberingMetricsLabelsPrefix(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewNumberingMetrics(reg)
	metrics.IncAssigned("NAZ")
	metrics.IncAssigned("NAZ")
	metrics.IncRetry("DOC")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "numbering_assigned_total", "prefix", "NAZ"); err != nil || got != 2 {
		t.Fatalf("expected NAZ assigned=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "numbering_retries_total", "prefix", "DOC"); err != nil || got != 1 {
		t.Fatalf("expected DOC retries=1, got %f (%v)", got, err)
	}
}

func TestReportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReportMetrics(reg)
	metrics.IncRendered("statistics", "excel")
	metrics.IncEmbedFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "reports_rendered_total", "format", "excel"); err != nil || got != 1 {
		t.Fatalf("expected rendered=1, got %f (%v)", got, err)
	}
	mf := findMetricFamily(mfs, "report_image_embed_failures_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatal("expected one embed failure")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var u *UpgradeMetrics
	u.IncApplied("x")
	var n *NumberingMetrics
	n.IncRetry("NAZ")
	r := NewReportMetrics(nil)
	r.IncRendered("protocol", "word")
	r.IncEmbedFailure()
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
