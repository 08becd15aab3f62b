package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// DecisionIDKey is the context key for the verdict's decision ID.
	DecisionIDKey contextKey = "decision_id"

	// SessionKey is the context key for the agent session identifier.
	SessionKey contextKey = "session_id"

	// ToolKey is the context key for the tool under evaluation.
	ToolKey contextKey = "tool"

	// PhaseKey is the context key for the hook phase (pre or post).
	PhaseKey contextKey = "phase"
)

// WithDecisionID adds a decision ID to the context.
func WithDecisionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DecisionIDKey, id)
}

// GetDecisionID retrieves the decision ID from the context.
func GetDecisionID(ctx context.Context) string {
	id, _ := ctx.Value(DecisionIDKey).(string)
	return id
}

// WithSession adds a session identifier to the context.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession retrieves the session identifier from the context.
func GetSession(ctx context.Context) string {
	s, _ := ctx.Value(SessionKey).(string)
	return s
}

// WithTool adds the tool identifier to the context.
func WithTool(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, ToolKey, tool)
}

// GetTool retrieves the tool identifier from the context.
func GetTool(ctx context.Context) string {
	t, _ := ctx.Value(ToolKey).(string)
	return t
}

// WithPhase adds the hook phase to the context.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, PhaseKey, phase)
}

// GetPhase retrieves the hook phase from the context.
func GetPhase(ctx context.Context) string {
	p, _ := ctx.Value(PhaseKey).(string)
	return p
}

// extractContextFields extracts common fields from context for logging.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if id := GetDecisionID(ctx); id != "" {
		fields = append(fields, "decision_id", id)
	}
	if s := GetSession(ctx); s != "" {
		fields = append(fields, "session_id", s)
	}
	if t := GetTool(ctx); t != "" {
		fields = append(fields, "tool", t)
	}
	if p := GetPhase(ctx); p != "" {
		fields = append(fields, "phase", p)
	}
	return fields
}
