// Package metrics exposes Prometheus metrics for the gate, the feedback
// engine and the audit trail.
//
// Every metric set tolerates a nil receiver so callers can hold the result
// of Collector.Gate() and friends without checking whether metrics are
// enabled.
package metrics
