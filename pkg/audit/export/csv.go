package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"keelson-hq/sprintgate/pkg/audit"
)

// CSVExporter exports records in CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	"id", "decision_id", "phase", "timestamp", "duration_ms",
	"session_id", "tool", "action_kind", "command", "file_path",
	"outcome", "check", "severity", "reason", "requires_approval",
	"blocks_workflow", "sprint_id", "policy_digest", "warnings",
}

// Export writes the records as CSV rows. Warnings are joined with "; ".
func (e *CSVExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
		if err := writer.Write(recordToRow(r)); err != nil {
			return audit.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return audit.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordToRow(r *audit.Record) []string {
	return []string{
		r.ID,
		r.DecisionID,
		r.Phase,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		strconv.FormatInt(r.Duration.Milliseconds(), 10),
		r.SessionID,
		r.Tool,
		r.ActionKind,
		r.Command,
		r.FilePath,
		r.Outcome(),
		r.Check,
		r.Severity,
		r.Reason,
		strconv.FormatBool(r.RequiresApproval),
		strconv.FormatBool(r.BlocksWorkflow),
		r.SprintID,
		r.PolicyDigest,
		strings.Join(r.Warnings, "; "),
	}
}
