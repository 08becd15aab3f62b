package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"keelson-hq/sprintgate/pkg/audit"
)

func sampleRecords() []*audit.Record {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*audit.Record{
		{
			ID: "r1", DecisionID: "d1", Phase: audit.PhasePre, Timestamp: ts,
			Duration: 2 * time.Millisecond, Tool: "Bash", Command: `echo "hi, there"`,
			Allowed: false, Check: "validator", Severity: "critical",
			Reason: "absolute rm ban", Warnings: []string{"a", "b"},
		},
		{
			ID: "r2", DecisionID: "d2", Phase: audit.PhasePost, Timestamp: ts.Add(time.Second),
			Tool: "Edit", Status: "success", Reason: "ok",
		},
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got []audit.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r1" || got[1].Status != "success" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(true).Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

func TestJSONLinesExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONLinesExporter{}).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line is not valid JSON: %s", line)
		}
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != len(rows[1]) {
		t.Errorf("header = %v", rows[0])
	}

	col := func(name string) int {
		for i, h := range rows[0] {
			if h == name {
				return i
			}
		}
		t.Fatalf("no column %q", name)
		return -1
	}
	if got := rows[1][col("command")]; got != `echo "hi, there"` {
		t.Errorf("command = %q", got)
	}
	if got := rows[1][col("outcome")]; got != "deny" {
		t.Errorf("pre outcome = %q, want deny", got)
	}
	if got := rows[2][col("outcome")]; got != "success" {
		t.Errorf("post outcome = %q, want success", got)
	}
	if got := rows[1][col("warnings")]; got != "a; b" {
		t.Errorf("warnings = %q", got)
	}
}

func TestCSVExporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCSVExporter(false).Export(ctx, sampleRecords(), &bytes.Buffer{})
	var exportErr *audit.ExportError
	if !errors.As(err, &exportErr) || !errors.Is(err, context.Canceled) {
		t.Errorf("Export() error = %v, want ExportError wrapping context.Canceled", err)
	}
}

func TestNew(t *testing.T) {
	for _, f := range []string{"json", "JSON", "jsonl", "ndjson", "csv"} {
		if _, err := New(f); err != nil {
			t.Errorf("New(%q) error = %v", f, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Error("New(xml) error = nil, want error")
	}
}
