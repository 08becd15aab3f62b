package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"keelson-hq/sprintgate/pkg/boundary"
	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/policy"
	"keelson-hq/sprintgate/pkg/state"
	"keelson-hq/sprintgate/pkg/telemetry/logging"
	"keelson-hq/sprintgate/pkg/telemetry/metrics"
	"keelson-hq/sprintgate/pkg/telemetry/tracing"
)

// RulesSource supplies the policy rules in force. *manager.Manager
// implements it.
type RulesSource interface {
	Rules() *policy.Rules
}

// RulesFunc adapts a function to RulesSource.
type RulesFunc func() *policy.Rules

// Rules calls f.
func (f RulesFunc) Rules() *policy.Rules {
	return f()
}

// StaticRules serves one fixed rule set.
func StaticRules(r *policy.Rules) RulesSource {
	return RulesFunc(func() *policy.Rules { return r })
}

// Options configures a Gate.
type Options struct {
	// Store holds the project state. Required.
	Store state.Store

	// Resolver discovers the workspace root. Nil means the root is
	// unknown, which denies every file write.
	Resolver boundary.Resolver

	// Policy supplies the rules. Nil means the built-in rules.
	Policy RulesSource

	Config   Config
	Logger   *logging.Logger
	Metrics  *metrics.GateMetrics
	Tracer   *tracing.Tracer
	Workflow classify.WorkflowClassifier

	// Now overrides the clock.
	Now func() time.Time

	// Checks overrides the pipeline. Nil means DefaultChecks.
	Checks []Check
}

// Gate evaluates proposed actions against the project state and policy.
// A Gate is safe for sequential reuse; evaluations are synchronous.
type Gate struct {
	store    state.Store
	resolver boundary.Resolver
	policy   RulesSource
	cfg      Config
	logger   *logging.Logger
	metrics  *metrics.GateMetrics
	tracer   *tracing.Tracer
	workflow classify.WorkflowClassifier
	now      func() time.Time
	checks   []Check
}

// New creates a Gate.
func New(opts Options) (*Gate, error) {
	if opts.Store == nil {
		return nil, errors.New("gate: state store is required")
	}

	g := &Gate{
		store:    opts.Store,
		resolver: opts.Resolver,
		policy:   opts.Policy,
		cfg:      opts.Config,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		workflow: opts.Workflow,
		now:      opts.Now,
		checks:   opts.Checks,
	}
	if g.policy == nil {
		g.policy = StaticRules(policy.MustDefaultRules())
	}
	if g.cfg.DefaultMaxIterations <= 0 && len(g.cfg.Checkpoints) == 0 && g.cfg.RepairDir == "" {
		g.cfg = DefaultConfig()
	}
	if g.cfg.PermissiveDefault == "" {
		g.cfg.PermissiveDefault = classify.PermissiveNone
	}
	if g.logger == nil {
		g.logger = logging.NewNop()
	}
	g.logger = g.logger.WithComponent("gate")
	if g.tracer == nil {
		g.tracer = tracing.NewNoop()
	}
	if g.workflow.Lexicon == nil {
		g.workflow = classify.NewWorkflowClassifier()
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.checks == nil {
		g.checks = DefaultChecks()
	}
	return g, nil
}

// Evaluate runs the pipeline for req and returns the verdict. It never
// fails: malformed requests and internal faults become deny verdicts or
// warnings.
func (g *Gate) Evaluate(ctx context.Context, req Request) Verdict {
	start := time.Now()
	id := uuid.NewString()

	ctx = logging.WithDecisionID(ctx, id)
	ctx = logging.WithSession(ctx, req.SessionID)
	ctx = logging.WithTool(ctx, req.Tool)
	ctx = logging.WithPhase(ctx, "pre")

	ctx, span := g.tracer.Start(ctx, "gate.Evaluate")
	defer span.End()

	v := g.evaluate(ctx, req)
	v.DecisionID = id

	span.SetAttributes(
		tracing.AttrTool.String(req.Tool),
		tracing.AttrActionKind.String(string(v.ActionKind)),
		tracing.AttrCheck.String(v.Check),
		tracing.AttrAllowed.Bool(v.Allowed),
	)
	if v.SprintID != "" {
		span.SetAttributes(tracing.AttrSprintID.String(v.SprintID))
	}

	g.metrics.RecordDecision(decidingCheck(v), v.Allowed, time.Since(start))
	g.logVerdict(ctx, v)
	return v
}

// Reject turns an envelope that could not be decoded into a critical deny.
func (g *Gate) Reject(ctx context.Context, err error) Verdict {
	v := Verdict{
		Allowed:    false,
		Reason:     fmt.Sprintf("malformed request envelope: %v", err),
		Severity:   SeverityCritical,
		Check:      CheckEnvelope,
		DecisionID: uuid.NewString(),
	}
	g.metrics.RecordDecision(CheckEnvelope, false, 0)
	g.logVerdict(logging.WithDecisionID(ctx, v.DecisionID), v)
	return v
}

func (g *Gate) evaluate(ctx context.Context, req Request) Verdict {
	if err := req.Validate(); err != nil {
		return Verdict{
			Allowed:  false,
			Reason:   err.Error(),
			Severity: SeverityCritical,
			Check:    CheckEnvelope,
		}
	}

	action := g.resolveAction(req)
	ev := &Evaluation{
		Action:   action,
		Snapshot: state.Read(ctx, g.store),
		Rules:    g.policy.Rules(),
		Config:   g.cfg,
		Now:      g.now(),
		resolver: g.resolver,
	}
	if ev.Rules == nil {
		ev.Rules = policy.MustDefaultRules()
	}

	var warnings []string
	if ev.Snapshot.Degraded() {
		warnings = append(warnings, fmt.Sprintf("project state %s: %v", ev.Snapshot.Status, ev.Snapshot.Err))
		g.logger.WarnContext(ctx, "project state unusable, workflow checks fail open",
			"status", ev.Snapshot.Status,
			"error", ev.Snapshot.Err,
		)
	}

	var (
		lastReason   string
		sprintID     string
		allowedPaths []string
		final        *Verdict
	)
	for _, c := range g.checks {
		out, err := g.runCheck(ctx, c, ev)
		if err != nil {
			out = g.handleCheckError(ctx, c, err)
		}
		warnings = append(warnings, out.Warnings...)

		if out.Denied {
			v := verdictFrom(out, c.Name)
			final = &v
			break
		}
		if out.SprintID != "" {
			sprintID = out.SprintID
		}
		if len(out.AllowedPaths) > 0 {
			allowedPaths = out.AllowedPaths
		}
		if out.Reason == "" {
			continue
		}
		if c.Name == CheckValidator && lastReason != "" {
			lastReason = lastReason + " | " + out.Reason
		} else {
			lastReason = out.Reason
		}
	}

	if final == nil {
		if lastReason == "" {
			lastReason = "all checks passed"
		}
		final = &Verdict{
			Allowed:      true,
			Reason:       lastReason,
			SprintID:     sprintID,
			AllowedPaths: allowedPaths,
		}
	}

	if ev.dirty {
		if err := g.store.Save(ctx, ev.State()); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to save project state: %v", err))
			g.logger.ErrorContext(ctx, "failed to save project state", "error", err)
		} else if sp := ev.Sprint(); sp != nil {
			g.metrics.SetIteration(sp.ID, sp.Iteration)
		}
	}

	final.ActionKind = action.Kind
	final.Warnings = append(final.Warnings, warnings...)
	return *final
}

// resolveAction classifies the request once for every check.
func (g *Gate) resolveAction(req Request) *Action {
	a := &Action{
		Request:  req,
		Kind:     KindOf(req.Tool),
		Commands: g.workflow.Commands(req.FreeText),
		Markers:  classify.ScanMarkers(req.FreeText),
	}
	if !a.Markers.FoundationBypass && req.Command != "" {
		a.Markers.FoundationBypass = classify.ScanMarkers(req.Command).FoundationBypass
	}
	a.Permissive = a.Markers.Permissive
	if a.Permissive == "" {
		a.Permissive = g.cfg.PermissiveDefault
	}
	return a
}

// runCheck runs one check in its own span and turns a panic into a
// *CheckError.
func (g *Gate) runCheck(ctx context.Context, c Check, ev *Evaluation) (out Outcome, err error) {
	ctx, span := g.tracer.Start(ctx, "gate.check."+c.Name,
		trace.WithAttributes(
			tracing.AttrCheck.String(c.Name),
			tracing.AttrFailMode.String(string(c.FailMode)),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = &CheckError{Check: c.Name, Panic: true, Cause: fmt.Errorf("%v", r)}
		}
		tracing.SetStatus(span, err)
		if err == nil {
			span.SetAttributes(tracing.AttrAllowed.Bool(!out.Denied))
		}
	}()

	out, err = c.Run(ctx, ev)
	if err != nil {
		var ce *CheckError
		if !errors.As(err, &ce) {
			err = &CheckError{Check: c.Name, Cause: err}
		}
	}
	return out, err
}

// handleCheckError applies the check's fail mode.
func (g *Gate) handleCheckError(ctx context.Context, c Check, err error) Outcome {
	g.metrics.RecordFault(c.Name, string(c.FailMode))
	g.logger.ErrorContext(ctx, "check error",
		"check", c.Name,
		"fail_mode", c.FailMode,
		"error", err,
	)

	switch c.FailMode {
	case FailClosed:
		return Deny(SeverityCritical, fmt.Sprintf("%s check could not complete, denying: %v", c.Name, err))
	default:
		return Pass("").WithWarning(fmt.Sprintf("%s check skipped after internal error: %v", c.Name, err))
	}
}

func (g *Gate) logVerdict(ctx context.Context, v Verdict) {
	args := []any{
		"allowed", v.Allowed,
		"check", v.Check,
		"reason", v.Reason,
	}
	if v.Severity != "" {
		args = append(args, "severity", v.Severity)
	}
	if v.SprintID != "" {
		args = append(args, "sprint_id", v.SprintID)
	}
	if len(v.Warnings) > 0 {
		args = append(args, "warnings", strings.Join(v.Warnings, "; "))
	}
	if v.Allowed {
		g.logger.InfoContext(ctx, "action allowed", args...)
		return
	}
	g.logger.WarnContext(ctx, "action denied", args...)
}

func verdictFrom(out Outcome, check string) Verdict {
	sev := out.Severity
	if sev == "" {
		sev = SeverityMedium
	}
	return Verdict{
		Allowed:          false,
		Reason:           out.Reason,
		Severity:         sev,
		Suggestion:       out.Suggestion,
		Guidance:         out.Guidance,
		SprintID:         out.SprintID,
		AllowedPaths:     out.AllowedPaths,
		RequiresApproval: out.RequiresApproval,
		Check:            check,
	}
}

func decidingCheck(v Verdict) string {
	if v.Check == "" {
		return "none"
	}
	return v.Check
}
