// Package tracing provides optional OpenTelemetry tracing.
//
// When enabled, every pre-action evaluation produces a span with a child
// span per check, exported over OTLP gRPC. When disabled the package hands
// out noop spans.
package tracing
