package metrics

import (
	"time"

	"keelson-hq/sprintgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// GateMetrics tracks the pre-action gate.
//
// Metrics:
//   - sprintgate_gate_decisions_total: verdicts by deciding check and outcome
//   - sprintgate_gate_evaluation_duration_seconds: end-to-end evaluation time
//   - sprintgate_gate_check_faults_total: checks that errored or panicked, by fail mode
//   - sprintgate_gate_sprint_iteration: last observed iteration of the active sprint
type GateMetrics struct {
	decisionsTotal     *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	checkFaults        *prometheus.CounterVec
	sprintIteration    *prometheus.GaugeVec
}

// NewGateMetrics creates and registers gate metrics with the provided registry.
func NewGateMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GateMetrics {
	gm := &GateMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "gate",
				Name:      "decisions_total",
				Help:      "Total number of pre-action verdicts",
			},
			[]string{"check", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "gate",
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of pre-action evaluation in seconds",
				// Dominated by the workspace root lookup, bounded by its timeout.
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"outcome"},
		),

		checkFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "gate",
				Name:      "check_faults_total",
				Help:      "Total number of checks that failed internally",
			},
			[]string{"check", "fail_mode"},
		),

		sprintIteration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "gate",
				Name:      "sprint_iteration",
				Help:      "Iteration counter of the active sprint after the last evaluation",
			},
			[]string{"sprint_id"},
		),
	}

	registry.MustRegister(
		gm.decisionsTotal,
		gm.evaluationDuration,
		gm.checkFaults,
		gm.sprintIteration,
	)

	return gm
}

// RecordDecision records one verdict.
//
// Example:
//
//	gm.RecordDecision("scope", false, 800*time.Microsecond)
func (gm *GateMetrics) RecordDecision(check string, allowed bool, duration time.Duration) {
	if gm == nil {
		return
	}
	outcome := outcomeLabel(allowed)
	gm.decisionsTotal.WithLabelValues(check, outcome).Inc()
	gm.evaluationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordFault records a check that returned an error or panicked.
func (gm *GateMetrics) RecordFault(check, failMode string) {
	if gm == nil {
		return
	}
	gm.checkFaults.WithLabelValues(check, failMode).Inc()
}

// SetIteration records the active sprint's iteration counter.
func (gm *GateMetrics) SetIteration(sprintID string, iteration int) {
	if gm == nil || sprintID == "" {
		return
	}
	gm.sprintIteration.WithLabelValues(sprintID).Set(float64(iteration))
}

func outcomeLabel(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
