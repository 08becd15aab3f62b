package gate

// Severity grades a deny.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Verdict is the gate's answer for one action.
type Verdict struct {
	Allowed          bool       `json:"allowed"`
	Reason           string     `json:"reason"`
	Severity         Severity   `json:"severity,omitempty"`
	Suggestion       string     `json:"suggestion,omitempty"`
	Guidance         string     `json:"guidance,omitempty"`
	SprintID         string     `json:"sprint_id,omitempty"`
	AllowedPaths     []string   `json:"allowed_paths,omitempty"`
	RequiresApproval bool       `json:"requires_approval,omitempty"`
	Warnings         []string   `json:"warnings,omitempty"`
	Check            string     `json:"check,omitempty"`
	DecisionID       string     `json:"decision_id"`
	ActionKind       ActionKind `json:"action_kind,omitempty"`
}

// Outcome is what a single check returns.
type Outcome struct {
	Denied           bool
	Reason           string
	Severity         Severity
	Suggestion       string
	Guidance         string
	SprintID         string
	AllowedPaths     []string
	RequiresApproval bool
	Warnings         []string
}

// Pass continues the pipeline. An empty reason means the check did not
// apply to the action.
func Pass(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Deny stops the pipeline.
func Deny(sev Severity, reason string) Outcome {
	return Outcome{Denied: true, Severity: sev, Reason: reason}
}

func (o Outcome) WithSuggestion(s string) Outcome {
	o.Suggestion = s
	return o
}

func (o Outcome) WithGuidance(s string) Outcome {
	o.Guidance = s
	return o
}

func (o Outcome) WithSprint(id string) Outcome {
	o.SprintID = id
	return o
}

func (o Outcome) WithAllowedPaths(paths []string) Outcome {
	o.AllowedPaths = append([]string(nil), paths...)
	return o
}

func (o Outcome) WithApproval() Outcome {
	o.RequiresApproval = true
	return o
}

func (o Outcome) WithWarning(w string) Outcome {
	o.Warnings = append(o.Warnings, w)
	return o
}

// WithWarningsFrom carries other's warnings over.
func (o Outcome) WithWarningsFrom(other Outcome) Outcome {
	o.Warnings = append(o.Warnings, other.Warnings...)
	return o
}
