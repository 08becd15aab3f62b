package config

import "time"

// Config is the root configuration structure for sprintgate.
// It contains the locations of the project state and policy documents,
// the knobs of the pre-action gate and post-action feedback engine, the
// audit trail, and telemetry settings.
type Config struct {
	// State locates the shared project state document.
	State StateConfig `yaml:"state"`

	// Policy locates the policy document and controls hot reload.
	Policy PolicyConfig `yaml:"policy"`

	// Boundary controls how the workspace root is discovered.
	Boundary BoundaryConfig `yaml:"boundary"`

	// Gate contains tunables for the pre-action check pipeline.
	Gate GateConfig `yaml:"gate"`

	// Feedback contains tunables for the post-action feedback engine.
	Feedback FeedbackConfig `yaml:"feedback"`

	// Audit contains configuration for the verdict audit trail including
	// storage driver, recorder buffering and retention.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StateConfig contains configuration for the project state document.
type StateConfig struct {
	// Path is the location of the JSON state document. Relative paths are
	// resolved against the working directory of the invocation.
	// Default: ".sprintgate/state.json"
	Path string `yaml:"path"`
}

// PolicyConfig contains configuration for the policy document.
type PolicyConfig struct {
	// Path is the location of the YAML policy document. A missing document
	// means the built-in defaults apply.
	// Default: ".sprintgate/policy.yaml"
	Path string `yaml:"path"`

	// Watch enables reloading the policy document when it changes.
	// Only meaningful for the long-running watch command.
	// Default: true
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period before a file change triggers a reload.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// BoundaryConfig contains configuration for workspace root discovery.
type BoundaryConfig struct {
	// Resolver selects how the workspace root is computed.
	// Options: "git" (git rev-parse), "go-git" (in-process repository
	// discovery), "static" (use Root as-is)
	// Default: "git"
	Resolver string `yaml:"resolver"`

	// Root is the workspace root used by the static resolver.
	Root string `yaml:"root"`

	// Timeout bounds the external root lookup. A lookup that exceeds it
	// yields an empty root, which denies file writes.
	// Default: 3s
	Timeout time.Duration `yaml:"timeout"`
}

// GateConfig contains tunables for the pre-action check pipeline.
type GateConfig struct {
	// PermissiveDefault is the permissive mode applied when the request's
	// free text carries no permissive marker.
	// Options: "none", "partial", "full"
	// Default: "none"
	PermissiveDefault string `yaml:"permissive_default"`

	// Checkpoints are the sprint iterations at which advancing to
	// implementation requires a self-assessment.
	// Default: [10, 25, 40, 60]
	Checkpoints []int `yaml:"checkpoints"`

	// RepairDir holds repair scope declarations. While any declaration
	// exists, file writes are confined to the newest declaration's scope.
	// Default: ".sprintgate/repair"
	RepairDir string `yaml:"repair_dir"`

	// RepairDocuments are filepath.Glob patterns, relative to the
	// workspace base, for markdown and text repair documents. A matching
	// document whose FAIL_SCOPE section lists "- file:" entries declares
	// a repair scope like a file in RepairDir.
	// Default: ["repair*.md", "REPAIR*.md", "fail_scope*.txt", the same
	// one directory down, and under documentation/*/]
	RepairDocuments []string `yaml:"repair_documents"`

	// DefaultMaxIterations is the sprint iteration budget used when the
	// state document carries none.
	// Default: 1000
	DefaultMaxIterations int `yaml:"default_max_iterations"`
}

// FeedbackConfig contains tunables for the post-action feedback engine.
type FeedbackConfig struct {
	// PlanFiles are glob patterns identifying plan-tracking files.
	// Default: ["**/PLAN.md", "**/plan.md", "**/*_plan.md", "**/*-plan.md",
	// "**/documentation/plans/**"]
	PlanFiles []string `yaml:"plan_files"`

	// PlanMaxBytes is the plan file size above which a drift warning fires.
	// Default: 10240
	PlanMaxBytes int64 `yaml:"plan_max_bytes"`

	// PlanMaxLines is the plan file line count above which a drift
	// warning fires.
	// Default: 1500
	PlanMaxLines int `yaml:"plan_max_lines"`

	// UIGlobs identify files whose change counts as a UI change.
	UIGlobs []string `yaml:"ui_globs"`

	// APIGlobs identify files whose change counts as an API change.
	APIGlobs []string `yaml:"api_globs"`
}

// AuditConfig contains configuration for the verdict audit trail.
type AuditConfig struct {
	// Enabled controls whether verdicts are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend configuration.
	SQLite AuditSQLiteConfig `yaml:"sqlite"`

	// Recorder contains recorder configuration.
	Recorder AuditRecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention AuditRetentionConfig `yaml:"retention"`
}

// AuditSQLiteConfig contains SQLite backend configuration.
type AuditSQLiteConfig struct {
	// Path is the database file.
	// Default: ".sprintgate/audit.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// BusyTimeout is how long a writer waits for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// AuditRecorderConfig contains recorder configuration.
type AuditRecorderConfig struct {
	// AsyncBuffer is the size of the recorder's channel.
	// Default: 64
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single storage write.
	// Default: 2s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxFieldLength truncates long command and reason fields.
	// Default: 500
	MaxFieldLength int `yaml:"max_field_length"`
}

// AuditRetentionConfig contains retention policy configuration.
type AuditRetentionConfig struct {
	// Days is the number of days records are kept. Zero keeps forever.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRecords caps the number of stored records. Zero means no cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// Schedule is the cron expression for pruning in watch mode.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration. Logs never go to stdout,
// which carries verdicts.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "warn"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// Output is "stderr" or a file path that log lines are appended to.
	// Default: "stderr"
	Output string `yaml:"output"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys, tokens and passwords in log fields.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether gate metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "sprintgate"
	Namespace string `yaml:"namespace"`

	// TextfilePath, when set, receives the registry in the Prometheus
	// text format after every invocation (node_exporter textfile collector).
	TextfilePath string `yaml:"textfile_path"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of evaluations traced (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name in traces.
	// Default: "sprintgate"
	ServiceName string `yaml:"service_name"`
}
