// Package feedback classifies the result of an executed agent action into
// a single prioritized verdict.
//
// Statuses are checked in a fixed order and the first that applies wins:
// a readiness token on a UI or API change without a sanity check, a
// readiness token on a UI change without a UI artifact, an INVALID_SCOPE
// marker, a readiness token that is not isolated on its own line, lazy
// placeholder output, an error signature, and finally plain success or
// failure. Every status except success blocks the workflow.
//
// Independently, writes to plan-tracking files that grow past the size or
// line thresholds attach a non-blocking drift warning.
package feedback
