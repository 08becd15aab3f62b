package gate

import (
	"context"
	"fmt"

	"keelson-hq/sprintgate/pkg/boundary"
	"keelson-hq/sprintgate/pkg/classify"
)

// checkScope confines writes to the active sprint's locked files.
func checkScope(ctx context.Context, ev *Evaluation) (Outcome, error) {
	a := ev.Action
	if a.Kind != KindWrite || a.FilePath == "" || !ev.Snapshot.Usable() {
		return Pass(""), nil
	}
	sp := ev.Sprint()
	if !sp.Locked() {
		return Pass(""), nil
	}
	return sprintScope(ctx, ev), nil
}

// sprintScope decides containment of the action's target in the active,
// locked sprint. Both outcomes report the sprint and its locked files.
func sprintScope(ctx context.Context, ev *Evaluation) Outcome {
	sp := ev.Sprint()
	if boundary.IsWithinAny(ev.Target(), sp.LockedFiles, ev.Base(ctx)) {
		return Pass(fmt.Sprintf("%s is within sprint %s scope", ev.Action.FilePath, sp.ID)).
			WithSprint(sp.ID).
			WithAllowedPaths(sp.LockedFiles)
	}
	return Deny(SeverityHigh, fmt.Sprintf("%s is outside sprint %s scope", ev.Action.FilePath, sp.ID)).
		WithSprint(sp.ID).
		WithAllowedPaths(sp.LockedFiles).
		WithGuidance("File operations must stay within the sprint manifesto boundaries")
}

// checkCheckpoint stops an advance once at every checkpoint iteration to
// ask for a self-assessment.
func checkCheckpoint(_ context.Context, ev *Evaluation) (Outcome, error) {
	if !ev.Action.Has(classify.CommandAdvance) || !ev.Snapshot.Usable() {
		return Pass(""), nil
	}
	sp := ev.Sprint()
	if sp == nil {
		return Pass(""), nil
	}

	it := sp.Iteration
	if !ev.Config.IsCheckpoint(it) || sp.ExecutionContext.CheckpointAcknowledged >= it {
		return Pass(""), nil
	}

	sp.ExecutionContext.CheckpointAcknowledged = it
	ev.MarkDirty()

	if ev.Action.Markers.SelfAssessment || ev.Action.Markers.Override {
		return Pass(fmt.Sprintf("self-assessment accepted at checkpoint %d", it)).WithSprint(sp.ID), nil
	}
	return Deny(SeverityMedium, fmt.Sprintf("iteration %d of sprint %s is a self-assessment checkpoint", it, sp.ID)).
		WithSprint(sp.ID).
		WithSuggestion("Run /deepselfassessment, then advance again with --assessment-complete").
		WithGuidance("Reply with SELF_ASSESSMENT: progress, risks and scope adherence, or pass --assessment-complete"), nil
}

// checkIteration counts mutating actions against the sprint budget.
func checkIteration(_ context.Context, ev *Evaluation) (Outcome, error) {
	if !ev.Action.Mutating() || !ev.Snapshot.Usable() {
		return Pass(""), nil
	}
	sp := ev.Sprint()
	if sp == nil {
		return Pass(""), nil
	}

	limit := sp.EffectiveMaxIterations(ev.Config.DefaultMaxIterations)
	if sp.Iteration >= limit {
		return Deny(SeverityHigh, fmt.Sprintf("sprint %s reached its iteration limit (%d/%d)", sp.ID, sp.Iteration, limit)).
			WithSprint(sp.ID).
			WithSuggestion("End the sprint with /endsprint or raise max_iterations"), nil
	}

	sp.Iteration++
	sp.Touch(ev.Action.Tool, ev.Now)
	ev.MarkDirty()

	return Pass(fmt.Sprintf("sprint %s iteration %d/%d", sp.ID, sp.Iteration, limit)).WithSprint(sp.ID), nil
}
