// Package gate implements the pre-action gate: an ordered pipeline of
// checks that decides whether the coding agent may perform a proposed tool
// action.
//
// # Pipeline
//
// A request is validated, classified once into an Action (kind, workflow
// commands, markers, permissive mode), and then passed through the checks
// in a fixed order:
//
//	foundation → workflow → sprint_context → planning_checklist → scope →
//	checkpoint → iteration → tool_permission → validator
//
// The first deny stops the pipeline and its reason, severity and hints are
// returned unchanged. Each check has a FailMode: an error or panic inside a
// FailOpen check adds a warning and continues, inside a FailClosed check it
// denies with severity critical. The built-in checks are all FailOpen; the
// deletion ban and the workspace boundary deny outright rather than by
// failing, so a broken check never blocks work on its own.
//
// # State
//
// The project state is loaded once per evaluation. Checks that mutate it
// (the iteration counter and checkpoint acknowledgement) mark the
// evaluation dirty, and the gate saves the state once at the end. Read-only
// actions never write.
//
// # Usage
//
//	g, err := gate.New(gate.Options{
//	    Store:    state.NewFileStore(".sprintgate/state.json"),
//	    Resolver: boundary.GitResolver{Timeout: 3 * time.Second},
//	    Policy:   policyManager,
//	    Config:   gate.ConfigFrom(cfg.Gate),
//	})
//	verdict := g.Evaluate(ctx, gate.RequestFromEnvelope(env))
package gate
