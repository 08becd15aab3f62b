package feedback

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/config"
	"keelson-hq/sprintgate/pkg/telemetry/logging"
	"keelson-hq/sprintgate/pkg/telemetry/metrics"
	"keelson-hq/sprintgate/pkg/telemetry/tracing"
)

var invalidScopeList = regexp.MustCompile(`INVALID_SCOPE:\s*\[(.*?)\]`)

// Options configures an Engine.
type Options struct {
	Config  config.FeedbackConfig
	Logger  *logging.Logger
	Metrics *metrics.FeedbackMetrics
	Tracer  *tracing.Tracer

	Tokens  classify.TokenClassifier
	Output  classify.OutputClassifier
	Surface classify.SurfaceClassifier
}

// Engine classifies executed actions into feedback verdicts. It never
// touches the project state.
type Engine struct {
	ui      *classify.GlobSet
	api     *classify.GlobSet
	drift   *DriftChecker
	tokens  classify.TokenClassifier
	output  classify.OutputClassifier
	surface classify.SurfaceClassifier

	logger  *logging.Logger
	metrics *metrics.FeedbackMetrics
	tracer  *tracing.Tracer
}

// New creates an Engine. Empty glob lists in the configuration fall back
// to the defaults.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	config.ApplyFeedbackDefaults(&cfg)

	ui, err := classify.NewGlobSet(cfg.UIGlobs)
	if err != nil {
		return nil, fmt.Errorf("feedback: ui globs: %w", err)
	}
	api, err := classify.NewGlobSet(cfg.APIGlobs)
	if err != nil {
		return nil, fmt.Errorf("feedback: api globs: %w", err)
	}
	drift, err := NewDriftChecker(cfg.PlanFiles, cfg.PlanMaxBytes, cfg.PlanMaxLines)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		ui:      ui,
		api:     api,
		drift:   drift,
		tokens:  opts.Tokens,
		output:  opts.Output,
		surface: opts.Surface,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}
	if len(e.tokens.Tokens) == 0 {
		e.tokens.Tokens = classify.DefaultReadinessTokens
	}
	if e.tokens.Evaluation == nil {
		e.tokens.Evaluation = classify.DefaultEvaluationTokens
	}
	if e.output.Lazy == nil && e.output.Errors == nil {
		e.output = classify.NewOutputClassifier()
	}
	if e.surface.UI == nil && e.surface.API == nil {
		e.surface = classify.NewSurfaceClassifier()
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.logger = e.logger.WithComponent("feedback")
	if e.tracer == nil {
		e.tracer = tracing.NewNoop()
	}
	return e, nil
}

// Evaluate classifies r. Exactly one status applies; plan drift warnings
// are attached independently and never block.
func (e *Engine) Evaluate(ctx context.Context, r Result) Verdict {
	id := uuid.NewString()
	ctx = logging.WithDecisionID(ctx, id)
	ctx = logging.WithSession(ctx, r.SessionID)
	ctx = logging.WithTool(ctx, r.Tool)
	ctx = logging.WithPhase(ctx, "post")

	ctx, span := e.tracer.Start(ctx, "feedback.Evaluate")
	defer span.End()

	start := time.Now()
	v := e.classify(r)
	v.DecisionID = id
	v.BlocksWorkflow = v.Status.Blocks()
	v.Warnings = append(v.Warnings, e.drift.Check(r)...)

	span.SetAttributes(
		tracing.AttrTool.String(r.Tool),
		tracing.AttrStatus.String(string(v.Status)),
	)
	e.metrics.RecordVerdict(string(v.Status), v.BlocksWorkflow, len(v.Warnings))

	args := []any{
		"status", v.Status,
		"blocks_workflow", v.BlocksWorkflow,
		"duration", time.Since(start),
	}
	if v.Matched != "" {
		args = append(args, "matched", v.Matched)
	}
	if v.BlocksWorkflow {
		e.logger.WarnContext(ctx, "action feedback", args...)
	} else {
		e.logger.InfoContext(ctx, "action feedback", args...)
	}
	return v
}

func (e *Engine) classify(r Result) Verdict {
	tool := r.toolName()
	out := r.Output
	token, evaluating := e.tokens.EvaluationRequested(out)

	if evaluating {
		if ui, api := e.touches(r); (ui || api) && !classify.HasSanityCheck(out) {
			area := "API"
			if ui {
				area = "UI"
			}
			return Verdict{
				Status:           StatusSanityCheckMissing,
				Message:          fmt.Sprintf("%s signalled %s for %s work without a sanity check", tool, token, area),
				Severity:         "high",
				CorrectiveAction: "Run the sanity checker on the changed UI/API surface and report SANITY_CHECK_PASS before evaluation",
				Matched:          token,
			}
		}
		if !classify.HasUIArtifact(out) {
			return Verdict{
				Status:           StatusUIArtifactMissing,
				Message:          fmt.Sprintf("%s signalled %s without a UI artifact confirmation", tool, token),
				Severity:         "high",
				CorrectiveAction: "Confirm real UI artifacts with \"UI artifacts provided by human? = yes\" before evaluation",
				Matched:          token,
			}
		}
	}

	if classify.HasInvalidScope(out) {
		msg := fmt.Sprintf("%s reported an invalid repair scope", tool)
		matched := "INVALID_SCOPE"
		if m := invalidScopeList.FindStringSubmatch(out); m != nil {
			msg = fmt.Sprintf("%s reported an invalid repair scope: missing paths [%s]", tool, m[1])
			matched = m[0]
		}
		return Verdict{
			Status:           StatusInvalidScope,
			Message:          msg,
			Severity:         "high",
			CorrectiveAction: "Fix the repair declaration so every scope path exists",
			Matched:          matched,
		}
	}

	for _, tok := range e.tokens.All(out) {
		if e.tokens.Isolated(out, tok) {
			continue
		}
		return Verdict{
			Status:           StatusTokenNotIsolated,
			Message:          fmt.Sprintf("%s emitted %s that is not isolated on its own line", tool, tok),
			Severity:         "high",
			CorrectiveAction: "Put the token alone on its own line, preceded by a blank line",
			Matched:          tok,
		}
	}

	if p, m, ok := e.output.LazyMatch(out); ok {
		return Verdict{
			Status:           StatusLazyOutput,
			Message:          fmt.Sprintf("%s produced placeholder output (%s)", tool, p.Name),
			Severity:         "high",
			CorrectiveAction: "Replace the placeholder with the real implementation",
			Matched:          strings.TrimSpace(m),
		}
	}

	if p, m, ok := e.output.ErrorMatch(out); ok {
		return Verdict{
			Status:           StatusErrorDetected,
			Message:          fmt.Sprintf("%s output contains an error (%s)", tool, p.Name),
			Severity:         "high",
			CorrectiveAction: "Address the error before emitting any READY_FOR_* token",
			Matched:          strings.TrimSpace(m),
		}
	}

	if r.Success {
		return Verdict{
			Status:   StatusSuccess,
			Message:  fmt.Sprintf("%s completed successfully", tool),
			Severity: "low",
		}
	}
	return Verdict{
		Status:           StatusFailure,
		Message:          fmt.Sprintf("%s failed", tool),
		Severity:         "medium",
		CorrectiveAction: "Review the failure and try again",
	}
}

// touches reports whether the action worked on UI or API code, judged by
// the file globs and by indicators in the command and paths.
func (e *Engine) touches(r Result) (ui, api bool) {
	files := r.Files()
	for _, f := range files {
		ui = ui || e.ui.Match(f)
		api = api || e.api.Match(f)
	}
	sui, sapi := e.surface.Classify(append(files, r.Command)...)
	return ui || sui, api || sapi
}
