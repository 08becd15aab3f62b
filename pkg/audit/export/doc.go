// Package export writes audit records as JSON, JSON lines or CSV.
package export
