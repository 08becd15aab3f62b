package gate

import (
	"context"
	"fmt"
)

// FailMode decides the verdict when a check cannot reach an answer.
type FailMode string

const (
	// FailOpen continues the pipeline with a warning.
	FailOpen FailMode = "open"
	// FailClosed denies the action.
	FailClosed FailMode = "closed"
)

// Check names, in pipeline order.
const (
	CheckEnvelope          = "envelope"
	CheckFoundation        = "foundation"
	CheckWorkflow          = "workflow"
	CheckSprintContext     = "sprint_context"
	CheckPlanningChecklist = "planning_checklist"
	CheckScope             = "scope"
	CheckCheckpoint        = "checkpoint"
	CheckIteration         = "iteration"
	CheckToolPermission    = "tool_permission"
	CheckValidator         = "validator"
)

// CheckFunc evaluates one check. Returning an error, or panicking, hands
// the decision to the check's FailMode.
type CheckFunc func(ctx context.Context, ev *Evaluation) (Outcome, error)

// Check is one named step of the pipeline.
type Check struct {
	Name     string
	FailMode FailMode
	Run      CheckFunc
}

// DefaultChecks returns the pipeline in its fixed order.
func DefaultChecks() []Check {
	return []Check{
		{Name: CheckFoundation, FailMode: FailOpen, Run: checkFoundation},
		{Name: CheckWorkflow, FailMode: FailOpen, Run: checkWorkflow},
		{Name: CheckSprintContext, FailMode: FailOpen, Run: checkSprintContext},
		{Name: CheckPlanningChecklist, FailMode: FailOpen, Run: checkPlanningChecklist},
		{Name: CheckScope, FailMode: FailOpen, Run: checkScope},
		{Name: CheckCheckpoint, FailMode: FailOpen, Run: checkCheckpoint},
		{Name: CheckIteration, FailMode: FailOpen, Run: checkIteration},
		{Name: CheckToolPermission, FailMode: FailOpen, Run: checkToolPermission},
		{Name: CheckValidator, FailMode: FailOpen, Run: checkValidator},
	}
}

// CheckError records a check that failed internally.
type CheckError struct {
	Check string
	Panic bool
	Cause error
}

func (e *CheckError) Error() string {
	if e.Panic {
		return fmt.Sprintf("check %s panicked: %v", e.Check, e.Cause)
	}
	return fmt.Sprintf("check %s failed: %v", e.Check, e.Cause)
}

func (e *CheckError) Unwrap() error {
	return e.Cause
}
