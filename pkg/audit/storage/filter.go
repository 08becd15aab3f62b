package storage

import (
	"strings"

	"keelson-hq/sprintgate/pkg/audit"
)

// buildWhereClause turns the query filters into a SQL WHERE clause and its
// arguments. Limit, offset and ordering are left to the caller.
func buildWhereClause(q *audit.Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var conds []string
	var args []any

	if q.StartTime != nil {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, q.EndTime.UnixNano())
	}

	eq := func(column, value string) {
		if value != "" {
			conds = append(conds, column+" = ?")
			args = append(args, value)
		}
	}
	eq("phase", q.Phase)
	eq("session_id", q.SessionID)
	eq("tool", q.Tool)
	eq("sprint_id", q.SprintID)
	eq("check_name", q.Check)
	eq("status", q.Status)

	if q.Allowed != nil {
		conds = append(conds, "allowed = ?")
		args = append(args, *q.Allowed)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// matchesQuery applies the same filters to an in-memory record.
func matchesQuery(r *audit.Record, q *audit.Query) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && r.Timestamp.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.Timestamp.After(*q.EndTime) {
		return false
	}
	if q.Phase != "" && r.Phase != q.Phase {
		return false
	}
	if q.SessionID != "" && r.SessionID != q.SessionID {
		return false
	}
	if q.Tool != "" && r.Tool != q.Tool {
		return false
	}
	if q.SprintID != "" && r.SprintID != q.SprintID {
		return false
	}
	if q.Check != "" && r.Check != q.Check {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.Allowed != nil && r.Allowed != *q.Allowed {
		return false
	}
	return true
}

// limitOf returns the effective page size of a query.
func limitOf(q *audit.Query) int {
	if q == nil || q.Limit <= 0 {
		return audit.DefaultQueryLimit
	}
	return q.Limit
}

func ascending(q *audit.Query) bool {
	return q != nil && strings.EqualFold(q.SortOrder, "asc")
}
