package gate

import (
	"context"
	"fmt"
	"strings"

	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/state"
)

// checkFoundation blocks development until the project foundation exists.
// Without a state document only reads and planning commands get through.
func checkFoundation(_ context.Context, ev *Evaluation) (Outcome, error) {
	if ev.Snapshot.Degraded() {
		return Pass("foundation check skipped: state document " + string(ev.Snapshot.Status)), nil
	}
	if ev.Snapshot.Usable() && ev.State().Foundation.Complete {
		return Pass("project foundation established"), nil
	}

	a := ev.Action
	switch {
	case a.Kind == KindRead:
		return Pass("read-only action allowed before foundation"), nil
	case a.Has(classify.CommandPlanning, classify.CommandFoundationStart):
		return Pass("planning action allowed before foundation"), nil
	case a.Markers.Override || a.Markers.FoundationBypass:
		return Pass("operator override").
			WithWarning("foundation not established; operator override bypassed the foundation gate"), nil
	}

	reason := "project foundation not established"
	if ev.Snapshot.Status == state.StatusMissing {
		reason += " (no state document)"
	}
	return Deny(SeverityCritical, reason).
		WithSuggestion("Run /startprojectplanning to establish the project foundation").
		WithGuidance("Only reads and planning commands such as /projectstatus run before the foundation exists"), nil
}

// checkWorkflow enforces the order foundation, planning, sprint.
func checkWorkflow(_ context.Context, ev *Evaluation) (Outcome, error) {
	if ev.Snapshot.Degraded() {
		return Pass(""), nil
	}
	st := ev.State()
	a := ev.Action

	if !st.Foundation.Complete && (a.Kind == KindWrite || a.Kind == KindExecute) &&
		!a.Has(classify.CommandFoundationStart) && !a.Markers.Override && !a.Markers.FoundationBypass {
		return Deny(SeverityHigh, "write and execute actions are blocked until the project foundation is complete").
			WithGuidance("Run /startprojectplanning first"), nil
	}

	if (a.Has(classify.CommandSprintStart) || a.Execution()) && !st.PlanningChecklist.Completed {
		return Deny(SeverityMedium, incompleteGatesReason(st)).
			WithGuidance("Run /startsprintplanning and pass every planning gate first"), nil
	}

	if a.Has(classify.CommandSprintEnd) && st.ActiveSprint() == nil {
		return Deny(SeverityMedium, "there is no active sprint to end").
			WithGuidance("Start a sprint with /startnewsprint"), nil
	}

	return Pass("workflow sequence valid"), nil
}

// checkSprintContext requires an active sprint for development and a
// locked manifesto for execution. Without a state document there is no
// sprint registry to enforce.
func checkSprintContext(_ context.Context, ev *Evaluation) (Outcome, error) {
	if !ev.Snapshot.Usable() {
		return Pass(""), nil
	}
	a := ev.Action
	sp := ev.Sprint()

	if sp == nil {
		if a.Has(classify.CommandPlanning, classify.CommandFoundationStart, classify.CommandSprintStart) {
			return Pass("no active sprint; planning action allowed"), nil
		}
		if a.Kind == KindWrite || a.Kind == KindExecute || a.Execution() {
			return Deny(SeverityHigh, "no active sprint context").
				WithSuggestion(`Run /startnewsprint "feature description" to establish sprint context`).
				WithGuidance("Start a sprint before development actions"), nil
		}
		return Pass(""), nil
	}

	if a.Execution() {
		if !sp.ManifestoLocked {
			return Deny(SeverityHigh, fmt.Sprintf("sprint %s manifesto is not locked", sp.ID)).
				WithSprint(sp.ID).
				WithSuggestion("Lock the sprint manifesto with /startnewsprint"), nil
		}
		if len(sp.LockedFiles) == 0 {
			return Deny(SeverityHigh, fmt.Sprintf("sprint %s has no locked files", sp.ID)).
				WithSprint(sp.ID).
				WithSuggestion("Establish the sprint file boundaries with /startnewsprint"), nil
		}
	}
	return Pass(fmt.Sprintf("sprint %s active", sp.ID)).WithSprint(sp.ID), nil
}

// checkPlanningChecklist refuses to start a sprint before planning passed.
func checkPlanningChecklist(_ context.Context, ev *Evaluation) (Outcome, error) {
	if !ev.Action.Has(classify.CommandSprintStart) || ev.Snapshot.Degraded() {
		return Pass(""), nil
	}
	st := ev.State()
	if st.PlanningChecklist.Completed {
		return Pass("planning checklist complete"), nil
	}
	return Deny(SeverityMedium, incompleteGatesReason(st)).
		WithGuidance("Run /startsprintplanning to complete every planning gate before /startnewsprint"), nil
}

func incompleteGatesReason(st *state.ProjectState) string {
	gates := st.IncompleteGates()
	if len(gates) == 0 {
		return "planning checklist not completed"
	}
	return "planning checklist not completed; incomplete gates: " + strings.Join(gates, ", ")
}
