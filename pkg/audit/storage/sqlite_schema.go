package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
// Timestamps are stored as Unix nanoseconds so both drivers compare them
// the same way.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL,
    phase TEXT NOT NULL,

    recorded_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL DEFAULT 0,

    session_id TEXT,
    tool TEXT NOT NULL,
    action_kind TEXT,
    command TEXT,
    file_path TEXT,

    allowed BOOLEAN NOT NULL,
    check_name TEXT,
    severity TEXT,
    reason TEXT,
    requires_approval BOOLEAN NOT NULL DEFAULT 0,

    status TEXT,
    blocks_workflow BOOLEAN NOT NULL DEFAULT 0,

    sprint_id TEXT,
    policy_digest TEXT,
    warnings TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_audit_session_id ON audit_records(session_id);
CREATE INDEX IF NOT EXISTS idx_audit_sprint_id ON audit_records(sprint_id);
CREATE INDEX IF NOT EXISTS idx_audit_tool ON audit_records(tool);
CREATE INDEX IF NOT EXISTS idx_audit_decision_id ON audit_records(decision_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO audit_records (
    id, decision_id, phase, recorded_at, duration_ns,
    session_id, tool, action_kind, command, file_path,
    allowed, check_name, severity, reason, requires_approval,
    status, blocks_workflow, sprint_id, policy_digest, warnings
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
    id, decision_id, phase, recorded_at, duration_ns,
    session_id, tool, action_kind, command, file_path,
    allowed, check_name, severity, reason, requires_approval,
    status, blocks_workflow, sprint_id, policy_digest, warnings
`
