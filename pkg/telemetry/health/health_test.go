package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		order  []string
		want   Report
	}{
		{
			name: "no checks",
			want: Report{Status: StatusOK, Checks: []Result{}},
		},
		{
			name:  "all healthy",
			order: []string{"state", "policy"},
			checks: map[string]CheckFunc{
				"state":  func(context.Context) error { return nil },
				"policy": func(context.Context) error { return nil },
			},
			want: Report{Status: StatusOK, Checks: []Result{
				{Name: "state", Status: StatusOK},
				{Name: "policy", Status: StatusOK},
			}},
		},
		{
			name:  "warning degrades",
			order: []string{"state", "audit"},
			checks: map[string]CheckFunc{
				"state": func(context.Context) error { return Warn("no state document at %s", "x.json") },
				"audit": func(context.Context) error { return nil },
			},
			want: Report{Status: StatusWarn, Checks: []Result{
				{Name: "state", Status: StatusWarn, Message: "no state document at x.json"},
				{Name: "audit", Status: StatusOK},
			}},
		},
		{
			name:  "failure wins over warning",
			order: []string{"boundary", "state"},
			checks: map[string]CheckFunc{
				"boundary": func(context.Context) error { return errors.New("workspace root unresolved") },
				"state":    func(context.Context) error { return Warn("missing") },
			},
			want: Report{Status: StatusFail, Checks: []Result{
				{Name: "boundary", Status: StatusFail, Message: "workspace root unresolved"},
				{Name: "state", Status: StatusWarn, Message: "missing"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for _, name := range tt.order {
				c.Register(name, tt.checks[name])
			}

			got := c.Run(context.Background())
			if got.Checks == nil {
				got.Checks = []Result{}
			}
			opts := cmpopts.IgnoreFields(Result{}, "Duration")
			if diff := cmp.Diff(tt.want, got, opts, cmpopts.IgnoreFields(Report{}, "Timestamp")); diff != "" {
				t.Errorf("Run() mismatch (-want +got):\n%s", diff)
			}
			if got.Failed() != (tt.want.Status == StatusFail) {
				t.Errorf("Failed() = %v", got.Failed())
			}
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	c.Register("slow", func(ctx context.Context) error {
		<-release
		return nil
	})

	report := c.Run(context.Background())
	if report.Status != StatusFail {
		t.Fatalf("Status = %q, want %q", report.Status, StatusFail)
	}
	if report.Checks[0].Message != ErrCheckTimeout.Error() {
		t.Errorf("Message = %q, want %q", report.Checks[0].Message, ErrCheckTimeout.Error())
	}
}

func TestRegister_Replaces(t *testing.T) {
	c := New(0)
	if c.timeout != 5*time.Second {
		t.Errorf("default timeout = %v, want 5s", c.timeout)
	}

	c.Register("a", func(context.Context) error { return errors.New("first") })
	c.Register("b", func(context.Context) error { return nil })
	c.Register("a", func(context.Context) error { return nil })

	if diff := cmp.Diff([]string{"a", "b"}, c.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if r := c.Run(context.Background()); r.Status != StatusOK {
		t.Errorf("Status = %q, want replaced check to pass", r.Status)
	}
}
