package metrics

import (
	"keelson-hq/sprintgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// FeedbackMetrics tracks post-action feedback verdicts.
type FeedbackMetrics struct {
	verdictsTotal *prometheus.CounterVec
	driftWarnings prometheus.Counter
}

// NewFeedbackMetrics creates and registers feedback metrics.
func NewFeedbackMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FeedbackMetrics {
	fm := &FeedbackMetrics{
		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "feedback",
				Name:      "verdicts_total",
				Help:      "Total number of post-action feedback verdicts by status",
			},
			[]string{"status", "blocks_workflow"},
		),
		driftWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "feedback",
				Name:      "plan_drift_warnings_total",
				Help:      "Total number of plan file size drift warnings",
			},
		),
	}

	registry.MustRegister(fm.verdictsTotal, fm.driftWarnings)
	return fm
}

// RecordVerdict records one feedback verdict.
func (fm *FeedbackMetrics) RecordVerdict(status string, blocks bool, driftWarnings int) {
	if fm == nil {
		return
	}
	label := "false"
	if blocks {
		label = "true"
	}
	fm.verdictsTotal.WithLabelValues(status, label).Inc()
	fm.driftWarnings.Add(float64(driftWarnings))
}
