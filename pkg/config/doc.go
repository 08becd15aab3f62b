// Package config provides configuration management for sprintgate.
//
// Configuration is read from a YAML file (by default
// .sprintgate/config.yaml) decoded on top of built-in defaults, overridden
// by SPRINTGATE_* environment variables and validated. A project without a
// configuration file runs on the defaults.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides, e.g. SPRINTGATE_STATE_PATH overrides
//     state.path and SPRINTGATE_GATE_CHECKPOINTS="10,25" overrides
//     gate.checkpoints
//  4. Validation, which reports every failing field at once:
//
//	configuration validation failed with 2 errors:
//	  - boundary.resolver: unknown resolver "svn" (must be git, go-git or static)
//	  - gate.checkpoints: checkpoints must be ascending
//
// # Example Configuration
//
//	state:
//	  path: ".sprintgate/state.json"
//
//	policy:
//	  path: ".sprintgate/policy.yaml"
//
//	gate:
//	  permissive_default: "partial"
//	  checkpoints: [10, 25, 40, 60]
//
//	audit:
//	  sqlite:
//	    driver: "sqlite3"
//	  retention:
//	    days: 14
//
//	telemetry:
//	  logging:
//	    level: "debug"
//	    output: ".sprintgate/gate.log"
package config
