package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "gate.checkpoints").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateState(&cfg.State)...)
	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateBoundary(&cfg.Boundary)...)
	errs = append(errs, validateGate(&cfg.Gate)...)
	errs = append(errs, validateFeedback(&cfg.Feedback)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateState(cfg *StateConfig) []FieldError {
	if strings.TrimSpace(cfg.Path) == "" {
		return []FieldError{{Field: "state.path", Message: "state path is required"}}
	}
	return nil
}

func validatePolicy(cfg *PolicyConfig) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, FieldError{Field: "policy.path", Message: "policy path is required"})
	}
	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{Field: "policy.debounce", Message: "debounce must not be negative"})
	}
	return errs
}

func validateBoundary(cfg *BoundaryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Resolver {
	case "git", "go-git":
	case "static":
		if cfg.Root == "" {
			errs = append(errs, FieldError{
				Field:   "boundary.root",
				Message: "root is required when resolver is \"static\"",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "boundary.resolver",
			Message: fmt.Sprintf("unknown resolver %q (must be git, go-git or static)", cfg.Resolver),
		})
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "boundary.timeout", Message: "timeout must be positive"})
	}
	return errs
}

func validateGate(cfg *GateConfig) []FieldError {
	var errs []FieldError

	switch cfg.PermissiveDefault {
	case "none", "partial", "full":
	default:
		errs = append(errs, FieldError{
			Field:   "gate.permissive_default",
			Message: fmt.Sprintf("unknown permissive mode %q (must be none, partial or full)", cfg.PermissiveDefault),
		})
	}

	for i, cp := range cfg.Checkpoints {
		if cp <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("gate.checkpoints[%d]", i),
				Message: "checkpoint must be positive",
			})
		}
	}
	if !sort.IntsAreSorted(cfg.Checkpoints) {
		errs = append(errs, FieldError{Field: "gate.checkpoints", Message: "checkpoints must be ascending"})
	}

	for i, p := range cfg.RepairDocuments {
		if _, err := filepath.Match(p, ""); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("gate.repair_documents[%d]", i),
				Message: fmt.Sprintf("invalid pattern %q: %v", p, err),
			})
		}
	}

	if cfg.DefaultMaxIterations <= 0 {
		errs = append(errs, FieldError{
			Field:   "gate.default_max_iterations",
			Message: "default max iterations must be positive",
		})
	}
	return errs
}

func validateFeedback(cfg *FeedbackConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateGlobs("feedback.plan_files", cfg.PlanFiles)...)
	errs = append(errs, validateGlobs("feedback.ui_globs", cfg.UIGlobs)...)
	errs = append(errs, validateGlobs("feedback.api_globs", cfg.APIGlobs)...)

	if cfg.PlanMaxBytes < 0 {
		errs = append(errs, FieldError{Field: "feedback.plan_max_bytes", Message: "must not be negative"})
	}
	if cfg.PlanMaxLines < 0 {
		errs = append(errs, FieldError{Field: "feedback.plan_max_lines", Message: "must not be negative"})
	}
	return errs
}

func validateGlobs(field string, patterns []string) []FieldError {
	var errs []FieldError
	for i, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("invalid glob %q: %v", p, err),
			})
		}
	}
	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "audit.sqlite.path", Message: "path is required"})
		}
		switch cfg.SQLite.Driver {
		case "sqlite", "sqlite3":
		default:
			errs = append(errs, FieldError{
				Field:   "audit.sqlite.driver",
				Message: fmt.Sprintf("unknown driver %q (must be sqlite or sqlite3)", cfg.SQLite.Driver),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("unknown backend %q (must be sqlite or memory)", cfg.Backend),
		})
	}

	if cfg.Recorder.AsyncBuffer < 0 {
		errs = append(errs, FieldError{Field: "audit.recorder.async_buffer", Message: "must not be negative"})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{Field: "audit.retention.days", Message: "must not be negative"})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{Field: "audit.retention.max_records", Message: "must not be negative"})
	}
	if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "audit.retention.schedule",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (must be json or text)", cfg.Logging.Format),
		})
	}
	if cfg.Logging.Output == "stdout" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.output",
			Message: "stdout is reserved for verdicts",
		})
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}
	return errs
}
