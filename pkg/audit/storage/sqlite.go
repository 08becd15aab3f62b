package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/telemetry/logging"
)

// Driver names registered with database/sql.
const (
	DriverPureGo = "sqlite"  // modernc.org/sqlite
	DriverCgo    = "sqlite3" // github.com/mattn/go-sqlite3
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path. Missing parent directories are created.
	Path string

	// Driver selects the database/sql driver, DriverPureGo or DriverCgo.
	// Default: DriverPureGo
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging so readers never block the gate.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         ".sprintgate/audit.db",
		Driver:       DriverPureGo,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the audit.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *logging.Logger
}

// NewSQLiteStorage opens (creating if needed) the database and initializes
// its schema.
func NewSQLiteStorage(config *SQLiteConfig, logger *logging.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverPureGo
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("audit.storage.sqlite")

	if dir := filepath.Dir(config.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, audit.NewStorageError("sqlite", "mkdir", err)
		}
	}

	dsn, err := buildDSN(config)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxOpenConns)

	s := &SQLiteStorage{db: db, config: config, logger: logger}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("SQLite storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

// buildDSN encodes the connection pragmas in the form each driver expects,
// so every pooled connection gets them.
func buildDSN(config *SQLiteConfig) (string, error) {
	ms := config.BusyTimeout.Milliseconds()
	params := url.Values{}

	switch config.Driver {
	case DriverCgo:
		params.Set("_busy_timeout", fmt.Sprint(ms))
		if config.WALMode {
			params.Set("_journal_mode", "WAL")
		}
	case DriverPureGo:
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", ms))
		if config.WALMode {
			params.Add("_pragma", "journal_mode(WAL)")
		}
	default:
		return "", fmt.Errorf("unknown sqlite driver %q", config.Driver)
	}

	return "file:" + config.Path + "?" + params.Encode(), nil
}

// initialize creates the schema and verifies its version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store persists an audit record.
func (s *SQLiteStorage) Store(ctx context.Context, r *audit.Record) error {
	warnings, err := json.Marshal(r.Warnings)
	if err != nil {
		return audit.NewStorageError("sqlite", "marshal_warnings", err)
	}

	_, err = s.db.ExecContext(ctx, insertRecord,
		r.ID, r.DecisionID, r.Phase, r.Timestamp.UnixNano(), int64(r.Duration),
		r.SessionID, r.Tool, r.ActionKind, r.Command, r.FilePath,
		r.Allowed, r.Check, r.Severity, r.Reason, r.RequiresApproval,
		r.Status, r.BlocksWorkflow, r.SprintID, r.PolicyDigest, string(warnings),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, q *audit.Query) ([]*audit.Record, error) {
	where, args := buildWhereClause(q)

	order := "DESC"
	if ascending(q) {
		order = "ASC"
	}
	offset := 0
	if q != nil && q.Offset > 0 {
		offset = q.Offset
	}

	stmt := "SELECT " + selectColumns + " FROM audit_records" + where +
		fmt.Sprintf(" ORDER BY recorded_at %s, id %s LIMIT ? OFFSET ?", order, order)
	args = append(args, limitOf(q), offset)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of records matching the filters.
func (s *SQLiteStorage) Count(ctx context.Context, q *audit.Query) (int64, error) {
	where, args := buildWhereClause(q)

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records"+where, args...).Scan(&n); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// Delete removes records matching the filters.
func (s *SQLiteStorage) Delete(ctx context.Context, q *audit.Query) (int64, error) {
	where, args := buildWhereClause(q)

	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_records"+where, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	if n > 0 {
		s.logger.Debug("deleted audit records", "count", n)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (*audit.Record, error) {
	var (
		r          audit.Record
		recordedAt int64
		durationNs int64
		session    sql.NullString
		actionKind sql.NullString
		command    sql.NullString
		filePath   sql.NullString
		check      sql.NullString
		severity   sql.NullString
		reason     sql.NullString
		status     sql.NullString
		sprintID   sql.NullString
		digest     sql.NullString
		warnings   sql.NullString
	)

	err := rows.Scan(
		&r.ID, &r.DecisionID, &r.Phase, &recordedAt, &durationNs,
		&session, &r.Tool, &actionKind, &command, &filePath,
		&r.Allowed, &check, &severity, &reason, &r.RequiresApproval,
		&status, &r.BlocksWorkflow, &sprintID, &digest, &warnings,
	)
	if err != nil {
		return nil, err
	}

	r.Timestamp = time.Unix(0, recordedAt).UTC()
	r.Duration = time.Duration(durationNs)
	r.SessionID = session.String
	r.ActionKind = actionKind.String
	r.Command = command.String
	r.FilePath = filePath.String
	r.Check = check.String
	r.Severity = severity.String
	r.Reason = reason.String
	r.Status = status.String
	r.SprintID = sprintID.String
	r.PolicyDigest = digest.String

	if warnings.Valid && warnings.String != "" && warnings.String != "null" {
		if err := json.Unmarshal([]byte(warnings.String), &r.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings for %s: %w", r.ID, err)
		}
	}
	return &r, nil
}
