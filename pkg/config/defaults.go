package config

import "time"

// Default values for configuration fields.
const (
	// State defaults
	DefaultStatePath = ".sprintgate/state.json"

	// Policy defaults
	DefaultPolicyPath     = ".sprintgate/policy.yaml"
	DefaultPolicyWatch    = true
	DefaultPolicyDebounce = 100 * time.Millisecond

	// Boundary defaults
	DefaultBoundaryResolver = "git"
	DefaultBoundaryTimeout  = 3 * time.Second

	// Gate defaults
	DefaultPermissiveMode       = "none"
	DefaultRepairDir            = ".sprintgate/repair"
	DefaultGateMaxIterations    = 1000
	DefaultFeedbackPlanMaxBytes = int64(10 * 1024)
	DefaultFeedbackPlanMaxLines = 1500

	// Audit defaults
	DefaultAuditEnabled          = true
	DefaultAuditBackend          = "sqlite"
	DefaultAuditSQLitePath       = ".sprintgate/audit.db"
	DefaultAuditSQLiteDriver     = "sqlite"
	DefaultAuditBusyTimeout      = 5 * time.Second
	DefaultAuditAsyncBuffer      = 64
	DefaultAuditWriteTimeout     = 2 * time.Second
	DefaultAuditMaxFieldLength   = 500
	DefaultAuditRetentionDays    = 30
	DefaultAuditRetentionSched   = "0 3 * * *"
	DefaultAuditRetentionRecords = int64(0)

	// Telemetry defaults
	DefaultLoggingLevel       = "warn"
	DefaultLoggingFormat      = "text"
	DefaultLoggingOutput      = "stderr"
	DefaultLoggingRedact      = true
	DefaultMetricsEnabled     = true
	DefaultMetricsNamespace   = "sprintgate"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingInsecure    = true
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "sprintgate"
)

// DefaultCheckpoints returns the default self-assessment checkpoints.
func DefaultCheckpoints() []int {
	return []int{10, 25, 40, 60}
}

// DefaultRepairDocuments returns the default repair document patterns.
func DefaultRepairDocuments() []string {
	return []string{
		"repair*.md", "REPAIR*.md", "fail_scope*.txt",
		"*/repair*.md", "*/REPAIR*.md", "*/fail_scope*.txt",
		"documentation/*/repair*.md", "documentation/*/REPAIR*.md",
	}
}

// DefaultPlanFiles returns the default plan-tracking file globs.
func DefaultPlanFiles() []string {
	return []string{
		"**/PLAN.md", "**/plan.md", "**/*_plan.md", "**/*-plan.md", "PLAN.md", "plan.md",
		"**/documentation/plans/**",
	}
}

// DefaultUIGlobs returns the default globs for UI-touching files.
func DefaultUIGlobs() []string {
	return []string{
		"**.tsx", "**.jsx", "**.js", "**.vue", "**.svelte",
		"**.html", "**.css", "**.scss",
		"**/components/**", "**/pages/**", "**/frontend/**", "**/ui/**",
	}
}

// DefaultAPIGlobs returns the default globs for API-touching files.
func DefaultAPIGlobs() []string {
	return []string{
		"**/api/**", "**/routes/**", "**/handlers/**", "**/controllers/**",
		"**.proto", "**/openapi*",
	}
}

// NewDefault returns a configuration with every default applied. Loading
// decodes YAML on top of this value, so booleans that default to true keep
// an explicit false from the file.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Policy.Watch = DefaultPolicyWatch
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Telemetry.Logging.RedactSecrets = DefaultLoggingRedact
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Insecure = DefaultTracingInsecure
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to any unset non-boolean fields.
// This function is idempotent.
func ApplyDefaults(cfg *Config) {
	applyStateDefaults(&cfg.State)
	applyPolicyDefaults(&cfg.Policy)
	applyBoundaryDefaults(&cfg.Boundary)
	applyGateDefaults(&cfg.Gate)
	ApplyFeedbackDefaults(&cfg.Feedback)
	applyAuditDefaults(&cfg.Audit)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyStateDefaults(cfg *StateConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultStatePath
	}
}

func applyPolicyDefaults(cfg *PolicyConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultPolicyPath
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultPolicyDebounce
	}
}

func applyBoundaryDefaults(cfg *BoundaryConfig) {
	if cfg.Resolver == "" {
		cfg.Resolver = DefaultBoundaryResolver
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultBoundaryTimeout
	}
}

func applyGateDefaults(cfg *GateConfig) {
	if cfg.PermissiveDefault == "" {
		cfg.PermissiveDefault = DefaultPermissiveMode
	}
	if len(cfg.Checkpoints) == 0 {
		cfg.Checkpoints = DefaultCheckpoints()
	}
	if cfg.RepairDir == "" {
		cfg.RepairDir = DefaultRepairDir
	}
	if cfg.RepairDocuments == nil {
		cfg.RepairDocuments = DefaultRepairDocuments()
	}
	if cfg.DefaultMaxIterations == 0 {
		cfg.DefaultMaxIterations = DefaultGateMaxIterations
	}
}

// ApplyFeedbackDefaults fills unset feedback fields.
func ApplyFeedbackDefaults(cfg *FeedbackConfig) {
	if len(cfg.PlanFiles) == 0 {
		cfg.PlanFiles = DefaultPlanFiles()
	}
	if cfg.PlanMaxBytes == 0 {
		cfg.PlanMaxBytes = DefaultFeedbackPlanMaxBytes
	}
	if cfg.PlanMaxLines == 0 {
		cfg.PlanMaxLines = DefaultFeedbackPlanMaxLines
	}
	if len(cfg.UIGlobs) == 0 {
		cfg.UIGlobs = DefaultUIGlobs()
	}
	if len(cfg.APIGlobs) == 0 {
		cfg.APIGlobs = DefaultAPIGlobs()
	}
}

func applyAuditDefaults(cfg *AuditConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultAuditBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.SQLite.Driver == "" {
		cfg.SQLite.Driver = DefaultAuditSQLiteDriver
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultAuditBusyTimeout
	}
	if cfg.Recorder.AsyncBuffer == 0 {
		cfg.Recorder.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Recorder.WriteTimeout == 0 {
		cfg.Recorder.WriteTimeout = DefaultAuditWriteTimeout
	}
	if cfg.Recorder.MaxFieldLength == 0 {
		cfg.Recorder.MaxFieldLength = DefaultAuditMaxFieldLength
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultAuditRetentionSched
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = DefaultLoggingOutput
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
}
