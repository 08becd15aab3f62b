package audit

import (
	"context"
	"io"
	"time"
)

// Phases of a recorded decision.
const (
	PhasePre  = "pre"
	PhasePost = "post"
)

// Record is the audit trail entry for one gate or feedback decision.
type Record struct {
	// Identity
	ID         string `json:"id"`          // UUID v4
	DecisionID string `json:"decision_id"` // From the verdict
	Phase      string `json:"phase"`       // "pre" or "post"

	// Timestamps
	Timestamp time.Time     `json:"timestamp"` // When the decision was made
	Duration  time.Duration `json:"duration"`  // Evaluation time

	// Action
	SessionID  string `json:"session_id,omitempty"`
	Tool       string `json:"tool"`
	ActionKind string `json:"action_kind,omitempty"`
	Command    string `json:"command,omitempty"`   // Redacted and truncated
	FilePath   string `json:"file_path,omitempty"` // Target of a write

	// Gate decision
	Allowed          bool   `json:"allowed"`
	Check            string `json:"check,omitempty"`    // Deciding check
	Severity         string `json:"severity,omitempty"` // Deny severity
	Reason           string `json:"reason"`             // Redacted and truncated
	RequiresApproval bool   `json:"requires_approval,omitempty"`

	// Feedback decision
	Status         string `json:"status,omitempty"`
	BlocksWorkflow bool   `json:"blocks_workflow,omitempty"`

	// Context
	SprintID     string   `json:"sprint_id,omitempty"`
	PolicyDigest string   `json:"policy_digest,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Outcome returns "allow" or "deny" for gate records and the feedback
// status for post records.
func (r *Record) Outcome() string {
	if r.Phase == PhasePost {
		return r.Status
	}
	if r.Allowed {
		return "allow"
	}
	return "deny"
}

// Query defines filter parameters for audit records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	Phase     string `json:"phase,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Tool      string `json:"tool,omitempty"`
	SprintID  string `json:"sprint_id,omitempty"`
	Check     string `json:"check,omitempty"`
	Status    string `json:"status,omitempty"`
	Allowed   *bool  `json:"allowed,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return (0 means the default)
	Offset int `json:"offset,omitempty"` // Skip N records

	// SortOrder is "asc" or "desc" by timestamp. Default: "desc"
	SortOrder string `json:"sort_order,omitempty"`
}

// DefaultQueryLimit caps a query without an explicit limit.
const DefaultQueryLimit = 100

// Storage defines the interface for audit storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters. An empty result is an
	// empty slice, not an error.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters. Limit and
	// offset are ignored.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how many
	// were removed. Limit and offset are ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Exporter writes records in some output format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
