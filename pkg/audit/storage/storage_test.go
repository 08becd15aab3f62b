package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/config"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(i int, allowed bool) *audit.Record {
	return &audit.Record{
		ID:         fmt.Sprintf("rec-%02d", i),
		DecisionID: fmt.Sprintf("dec-%02d", i),
		Phase:      audit.PhasePre,
		Timestamp:  base.Add(time.Duration(i) * time.Minute),
		Duration:   3 * time.Millisecond,
		SessionID:  "session-a",
		Tool:       "Bash",
		ActionKind: "command",
		Command:    "go test ./...",
		Allowed:    allowed,
		Check:      "validator",
		Reason:     "command validation passed",
		SprintID:   "sprint-7",
		Warnings:   []string{"project state corrupt"},
	}
}

// backends returns every storage implementation under test.
func backends(t *testing.T) map[string]audit.Storage {
	t.Helper()

	out := map[string]audit.Storage{"memory": NewMemoryStorage()}
	for _, driver := range []string{DriverPureGo, DriverCgo} {
		s, err := NewSQLiteStorage(&SQLiteConfig{
			Path:        filepath.Join(t.TempDir(), "nested", "audit.db"),
			Driver:      driver,
			WALMode:     true,
			BusyTimeout: time.Second,
		}, nil)
		if err != nil {
			if driver == DriverCgo && strings.Contains(err.Error(), "CGO_ENABLED=0") {
				t.Logf("skipping %s: cgo disabled", driver)
				continue
			}
			t.Fatalf("NewSQLiteStorage(%s) error = %v", driver, err)
		}
		out["sqlite/"+driver] = s
	}
	for _, s := range out {
		t.Cleanup(func() { s.Close() })
	}
	return out
}

func TestStorage_StoreAndQuery(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := record(1, true)
			if err := s.Store(ctx, want); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			got, err := s.Query(ctx, &audit.Query{})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("Query() returned %d records, want 1", len(got))
			}
			if diff := cmp.Diff(want, got[0]); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStorage_Filters(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 6; i++ {
				r := record(i, i%2 == 0)
				if i >= 4 {
					r.Phase = audit.PhasePost
					r.Status = "lazy_output"
					r.Tool = "Edit"
				}
				if err := s.Store(ctx, r); err != nil {
					t.Fatalf("Store() error = %v", err)
				}
			}

			denied := false
			start := base.Add(2 * time.Minute)
			end := base.Add(4 * time.Minute)

			tests := []struct {
				name  string
				query audit.Query
				want  []string
			}{
				{"all newest first", audit.Query{}, []string{"rec-05", "rec-04", "rec-03", "rec-02", "rec-01", "rec-00"}},
				{"ascending", audit.Query{SortOrder: "asc", Limit: 2}, []string{"rec-00", "rec-01"}},
				{"offset", audit.Query{Limit: 2, Offset: 1}, []string{"rec-04", "rec-03"}},
				{"denied only", audit.Query{Phase: audit.PhasePre, Allowed: &denied}, []string{"rec-03", "rec-01"}},
				{"time range inclusive", audit.Query{StartTime: &start, EndTime: &end}, []string{"rec-04", "rec-03", "rec-02"}},
				{"status", audit.Query{Status: "lazy_output"}, []string{"rec-05", "rec-04"}},
				{"tool", audit.Query{Tool: "Edit", Limit: 1}, []string{"rec-05"}},
				{"no match", audit.Query{SessionID: "other"}, nil},
			}

			for _, tt := range tests {
				got, err := s.Query(ctx, &tt.query)
				if err != nil {
					t.Fatalf("%s: Query() error = %v", tt.name, err)
				}
				var ids []string
				for _, r := range got {
					ids = append(ids, r.ID)
				}
				if diff := cmp.Diff(tt.want, ids); diff != "" {
					t.Errorf("%s: ids mismatch (-want +got):\n%s", tt.name, diff)
				}
			}

			n, err := s.Count(ctx, &audit.Query{Phase: audit.PhasePre})
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != 4 {
				t.Errorf("Count(pre) = %d, want 4", n)
			}
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if err := s.Store(ctx, record(i, true)); err != nil {
					t.Fatalf("Store() error = %v", err)
				}
			}

			cutoff := base.Add(2 * time.Minute)
			n, err := s.Delete(ctx, &audit.Query{EndTime: &cutoff})
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if n != 3 {
				t.Errorf("Delete() = %d, want 3", n)
			}

			left, err := s.Count(ctx, nil)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if left != 2 {
				t.Errorf("Count() after delete = %d, want 2", left)
			}
		})
	}
}

func TestSQLiteStorage_UnknownDriver(t *testing.T) {
	_, err := NewSQLiteStorage(&SQLiteConfig{
		Path:   filepath.Join(t.TempDir(), "audit.db"),
		Driver: "postgres",
	}, nil)
	if err == nil {
		t.Fatal("NewSQLiteStorage() error = nil, want error for unknown driver")
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	s, err := NewSQLiteStorage(&SQLiteConfig{Path: path, WALMode: true, BusyTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	if err := s.Store(ctx, record(1, false)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = NewSQLiteStorage(&SQLiteConfig{Path: path, WALMode: true, BusyTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	n, err := s.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.AuditConfig{Backend: "memory"}, nil)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("Open(memory) = %T, want *MemoryStorage", s)
	}

	if _, err := Open(config.AuditConfig{Backend: "kafka"}, nil); err == nil {
		t.Error("Open(kafka) error = nil, want error")
	}
}
