// Package telemetry groups the gate's observability packages.
//
// # Components
//
//   - logging: slog-based structured logging with secret redaction
//   - metrics: Prometheus counters and gauges, flushed to a textfile
//   - tracing: OpenTelemetry spans around gate and feedback evaluation
//   - health: concurrent self-checks behind "sprintgate doctor"
//
// Every hook invocation is a short-lived process, so nothing here serves
// HTTP. Metrics reach Prometheus through the node_exporter textfile
// collector and spans are exported over OTLP gRPC before the process exits.
//
// Logs never go to stdout, which carries the verdict.
package telemetry
