// Package recorder turns gate and feedback verdicts into audit records and
// writes them in the background.
//
// Commands, reasons and warnings pass through the logging redactor before
// they are stored, then are truncated to the configured field length.
// Recording is best effort: a full buffer or a failed write is logged and
// counted, never surfaced as a different verdict.
package recorder
