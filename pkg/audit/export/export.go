package export

import (
	"fmt"
	"strings"

	"keelson-hq/sprintgate/pkg/audit"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "jsonl", "csv"}

// New returns the exporter for a format name.
func New(format string) (audit.Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(true), nil
	case "jsonl", "ndjson":
		return JSONLinesExporter{}, nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (must be one of %s)", format, strings.Join(Formats, ", "))
	}
}
