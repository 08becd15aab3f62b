package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:      "empty state path",
			mutate:    func(c *Config) { c.State.Path = " " },
			wantField: "state.path",
		},
		{
			name:      "static resolver without root",
			mutate:    func(c *Config) { c.Boundary.Resolver = "static" },
			wantField: "boundary.root",
		},
		{
			name:      "non-positive timeout",
			mutate:    func(c *Config) { c.Boundary.Timeout = -1 },
			wantField: "boundary.timeout",
		},
		{
			name:      "unknown permissive mode",
			mutate:    func(c *Config) { c.Gate.PermissiveDefault = "always" },
			wantField: "gate.permissive_default",
		},
		{
			name:      "unsorted checkpoints",
			mutate:    func(c *Config) { c.Gate.Checkpoints = []int{25, 10} },
			wantField: "gate.checkpoints",
		},
		{
			name:      "zero checkpoint",
			mutate:    func(c *Config) { c.Gate.Checkpoints = []int{0, 10} },
			wantField: "gate.checkpoints[0]",
		},
		{
			name:      "bad repair document pattern",
			mutate:    func(c *Config) { c.Gate.RepairDocuments = []string{"repair[.md"} },
			wantField: "gate.repair_documents[0]",
		},
		{
			name:      "bad glob",
			mutate:    func(c *Config) { c.Feedback.PlanFiles = []string{"[unterminated"} },
			wantField: "feedback.plan_files[0]",
		},
		{
			name:      "unknown sqlite driver",
			mutate:    func(c *Config) { c.Audit.SQLite.Driver = "postgres" },
			wantField: "audit.sqlite.driver",
		},
		{
			name:      "bad cron schedule",
			mutate:    func(c *Config) { c.Audit.Retention.Schedule = "every day" },
			wantField: "audit.retention.schedule",
		},
		{
			name: "disabled audit skips audit checks",
			mutate: func(c *Config) {
				c.Audit.Enabled = false
				c.Audit.Backend = "bogus"
			},
		},
		{
			name:      "logs on stdout",
			mutate:    func(c *Config) { c.Telemetry.Logging.Output = "stdout" },
			wantField: "telemetry.logging.output",
		},
		{
			name:      "sample ratio out of range",
			mutate:    func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 },
			wantField: "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error on %s", tt.wantField)
			}
			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field %s in %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 errors") || !strings.Contains(msg, "b: worse") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := NewDefault()
	before := *cfg
	ApplyDefaults(cfg)
	if cfg.State != before.State || cfg.Boundary != before.Boundary || cfg.Telemetry != before.Telemetry {
		t.Error("ApplyDefaults changed an already defaulted config")
	}
}
