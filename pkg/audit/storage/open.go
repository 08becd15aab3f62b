package storage

import (
	"fmt"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/config"
	"keelson-hq/sprintgate/pkg/telemetry/logging"
)

// Open creates the backend selected by the audit configuration.
func Open(cfg config.AuditConfig, logger *logging.Logger) (audit.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		return NewSQLiteStorage(&SQLiteConfig{
			Path:        cfg.SQLite.Path,
			Driver:      cfg.SQLite.Driver,
			WALMode:     true,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}
