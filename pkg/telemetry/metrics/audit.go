package metrics

import (
	"keelson-hq/sprintgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks the audit trail.
type AuditMetrics struct {
	recordsTotal *prometheus.CounterVec
	pruned       prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "records_total",
				Help:      "Total number of audit records by write result",
			},
			[]string{"result"},
		),
		pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "pruned_records_total",
				Help:      "Total number of audit records removed by retention",
			},
		),
	}

	registry.MustRegister(am.recordsTotal, am.pruned)
	return am
}

// RecordWrite records the outcome of one audit write ("ok", "error", "dropped").
func (am *AuditMetrics) RecordWrite(result string) {
	if am == nil {
		return
	}
	am.recordsTotal.WithLabelValues(result).Inc()
}

// RecordPruned records records deleted by a retention run.
func (am *AuditMetrics) RecordPruned(n int64) {
	if am == nil || n <= 0 {
		return
	}
	am.pruned.Add(float64(n))
}
