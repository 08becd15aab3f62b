package export

import (
	"context"
	"encoding/json"
	"io"

	"keelson-hq/sprintgate/pkg/audit"
)

// JSONExporter exports records as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes the records as one JSON array. No records is "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	if records == nil {
		records = []*audit.Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return audit.NewExportError("json", len(records), err)
	}
	return nil
}

// JSONLinesExporter exports one JSON object per line.
type JSONLinesExporter struct{}

// Export writes each record on its own line.
func (JSONLinesExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return audit.NewExportError("jsonl", len(records), err)
		}
		if err := enc.Encode(r); err != nil {
			return audit.NewExportError("jsonl", len(records), err)
		}
	}
	return nil
}
