package feedback

// Status is the outcome class of a feedback verdict.
type Status string

// Statuses in priority order. The first that applies wins.
const (
	StatusSanityCheckMissing Status = "sanity_check_missing"
	StatusUIArtifactMissing  Status = "ui_artifact_missing"
	StatusInvalidScope       Status = "invalid_scope"
	StatusTokenNotIsolated   Status = "token_not_isolated"
	StatusLazyOutput         Status = "lazy_output"
	StatusErrorDetected      Status = "error_detected"
	StatusSuccess            Status = "success"
	StatusFailure            Status = "failure"
)

// Blocks reports whether a verdict with this status stops the workflow.
func (s Status) Blocks() bool {
	return s != StatusSuccess
}

// Verdict is the feedback for one executed action.
type Verdict struct {
	Status           Status   `json:"status"`
	Message          string   `json:"message"`
	BlocksWorkflow   bool     `json:"blocks_workflow"`
	Severity         string   `json:"severity"`
	CorrectiveAction string   `json:"corrective_action,omitempty"`
	Matched          string   `json:"matched,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	DecisionID       string   `json:"decision_id"`
}
