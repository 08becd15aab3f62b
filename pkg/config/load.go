package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SPRINTGATE_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of the defaults and then validated. A missing
// file is not an error: the gate must work in a project that has never been
// configured, so the defaults are returned instead.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefault()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Unconfigured project.
		case err != nil:
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SPRINTGATE_SECTION_FIELD (e.g., SPRINTGATE_STATE_PATH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file (or defaults when the file is absent)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	envString("STATE_PATH", &cfg.State.Path)

	envString("POLICY_PATH", &cfg.Policy.Path)
	envBool("POLICY_WATCH", &cfg.Policy.Watch)
	envDuration("POLICY_DEBOUNCE", &cfg.Policy.Debounce)

	envString("BOUNDARY_RESOLVER", &cfg.Boundary.Resolver)
	envString("BOUNDARY_ROOT", &cfg.Boundary.Root)
	envDuration("BOUNDARY_TIMEOUT", &cfg.Boundary.Timeout)

	envString("GATE_PERMISSIVE_DEFAULT", &cfg.Gate.PermissiveDefault)
	envString("GATE_REPAIR_DIR", &cfg.Gate.RepairDir)
	envInt("GATE_DEFAULT_MAX_ITERATIONS", &cfg.Gate.DefaultMaxIterations)
	if val := os.Getenv(EnvPrefix + "GATE_CHECKPOINTS"); val != "" {
		if cps, err := parseIntList(val); err == nil {
			cfg.Gate.Checkpoints = cps
		}
	}

	envBool("AUDIT_ENABLED", &cfg.Audit.Enabled)
	envString("AUDIT_BACKEND", &cfg.Audit.Backend)
	envString("AUDIT_SQLITE_PATH", &cfg.Audit.SQLite.Path)
	envString("AUDIT_SQLITE_DRIVER", &cfg.Audit.SQLite.Driver)
	envInt("AUDIT_RETENTION_DAYS", &cfg.Audit.Retention.Days)
	envString("AUDIT_RETENTION_SCHEDULE", &cfg.Audit.Retention.Schedule)

	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envString("TELEMETRY_LOGGING_OUTPUT", &cfg.Telemetry.Logging.Output)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_TEXTFILE_PATH", &cfg.Telemetry.Metrics.TextfilePath)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// parseIntList parses a comma separated list such as "10,25,50".
func parseIntList(val string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", part, err)
		}
		out = append(out, i)
	}
	return out, nil
}
