package feedback

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/config"
	"keelson-hq/sprintgate/pkg/hook"
	"keelson-hq/sprintgate/pkg/telemetry/metrics"
)

func newEngine(t *testing.T, cfg config.FeedbackConfig) *Engine {
	t.Helper()
	e, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestEvaluate_Priority(t *testing.T) {
	tests := []struct {
		name    string
		result  Result
		status  Status
		matched string
	}{
		{
			name: "sanity check missing on UI change",
			result: Result{
				Tool: "Write", Success: true, FilePath: "web/src/App.tsx",
				Output: "Implemented the page.\n\nREADY_FOR_EVALUATOR",
			},
			status:  StatusSanityCheckMissing,
			matched: "READY_FOR_EVALUATOR",
		},
		{
			name: "sanity check missing on API change wins over lazy output",
			result: Result{
				Tool: "Edit", Success: true, ChangedFiles: []string{"internal/api/users.go"},
				Output: "// ... rest of the code\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusSanityCheckMissing,
		},
		{
			name: "sanity check missing on UI work named in the command",
			result: Result{
				Tool: "Bash", Success: true, Command: "npm run build --prefix frontend/",
				Output: "Built.\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusSanityCheckMissing,
		},
		{
			name: "ui artifact missing",
			result: Result{
				Tool: "Write", Success: true, FilePath: "web/components/Button.vue",
				Output: "SANITY_CHECK: PASSED\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusUIArtifactMissing,
		},
		{
			name: "ui change fully confirmed",
			result: Result{
				Tool: "Write", Success: true, FilePath: "web/components/Button.vue",
				Output: "SANITY_CHECK: PASSED\nScreenshot saved to artifacts/button.png\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusSuccess,
		},
		{
			name: "ui change confirmed with sanity pass and human artifacts",
			result: Result{
				Tool: "Write", Success: true, FilePath: "web/src/App.tsx",
				Output: "SANITY_CHECK_PASS\nUI artifacts provided by human? = yes\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusSuccess,
		},
		{
			name: "sanity complete is accepted",
			result: Result{
				Tool: "Edit", Success: true, FilePath: "internal/api/users.go",
				Output: "<promise>SANITY_CHECK_COMPLETE</promise>\nUI artifacts provided by human? = yes\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusSuccess,
		},
		{
			name: "api change at evaluation still needs artifact confirmation",
			result: Result{
				Tool: "Edit", Success: true, FilePath: "internal/api/users.go",
				Output: "SANITY_CHECK_PASS\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusUIArtifactMissing,
		},
		{
			name: "evaluation without ui work needs artifact confirmation",
			result: Result{
				Tool: "Task", Success: true,
				Output: "Refactored the parser.\n\nREADY_FOR_EVALUATOR",
			},
			status:  StatusUIArtifactMissing,
			matched: "READY_FOR_EVALUATOR",
		},
		{
			name: "evaluation without ui work and confirmation",
			result: Result{
				Tool: "Task", Success: true,
				Output: "Refactored the parser.\nUI artifacts provided by human? = yes\n\nREADY_FOR_EVALUATOR",
			},
			status: StatusSuccess,
		},
		{
			name: "handoff to coder needs no proof",
			result: Result{
				Tool: "Edit", Success: true, FilePath: "internal/api/users.go",
				Output: "Spec written.\n\nREADY_FOR_CODER",
			},
			status: StatusSuccess,
		},
		{
			name: "coder token glued to output",
			result: Result{
				Tool: "Task", Success: true,
				Output: "done\nREADY_FOR_CODER",
			},
			status:  StatusTokenNotIsolated,
			matched: "READY_FOR_CODER",
		},
		{
			name: "second token not isolated",
			result: Result{
				Tool: "Task", Success: true,
				Output: "Tests written.\n\nREADY_FOR_TESTER\nthen READY_FOR_EVALUATION_COMPLETE",
			},
			status:  StatusTokenNotIsolated,
			matched: "READY_FOR_EVALUATION_COMPLETE",
		},
		{
			name: "inline mention before isolated token",
			result: Result{
				Tool: "Task", Success: true,
				Output: "I will emit READY_FOR_TESTER now\n\nREADY_FOR_TESTER",
			},
			status: StatusTokenNotIsolated,
		},
		{
			name: "invalid scope",
			result: Result{
				Tool: "Task", Success: true,
				Output: "Scope check: INVALID_SCOPE: [src/missing.go, lib/]",
			},
			status:  StatusInvalidScope,
			matched: "INVALID_SCOPE: [src/missing.go, lib/]",
		},
		{
			name: "token inline with prose",
			result: Result{
				Tool: "Task", Success: true,
				Output: "All tests pass. READY_FOR_REVIEW",
			},
			status:  StatusTokenNotIsolated,
			matched: "READY_FOR_REVIEW",
		},
		{
			name: "token without blank line before it",
			result: Result{
				Tool: "Task", Success: true,
				Output: "All tests pass.\nREADY_FOR_REVIEW",
			},
			status: StatusTokenNotIsolated,
		},
		{
			name: "token after comment line",
			result: Result{
				Tool: "Task", Success: true,
				Output: "All tests pass.\n# summary above\nREADY_FOR_REVIEW",
			},
			status: StatusSuccess,
		},
		{
			name: "lazy output",
			result: Result{
				Tool: "Edit", Success: true,
				Output: "func handler() {\n    // ... existing code\n}",
			},
			status: StatusLazyOutput,
		},
		{
			name: "error signature despite success flag",
			result: Result{
				Tool: "Bash", Success: true,
				Output: "Traceback (most recent call last):\n  File \"x.py\", line 1",
			},
			status:  StatusErrorDetected,
			matched: "Traceback (most recent call last)",
		},
		{
			name:   "plain success",
			result: Result{Tool: "Bash", Success: true, Output: "ok  \tkeelson/x\t0.01s"},
			status: StatusSuccess,
		},
		{
			name:   "plain failure",
			result: Result{Tool: "Bash", Success: false, Output: "exit status 1"},
			status: StatusFailure,
		},
	}

	e := newEngine(t, config.FeedbackConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Evaluate(context.Background(), tt.result)

			if v.Status != tt.status {
				t.Fatalf("Status = %q, want %q (%s)", v.Status, tt.status, v.Message)
			}
			if v.BlocksWorkflow != (tt.status != StatusSuccess) {
				t.Errorf("BlocksWorkflow = %v for %s", v.BlocksWorkflow, v.Status)
			}
			if tt.matched != "" && v.Matched != tt.matched {
				t.Errorf("Matched = %q, want %q", v.Matched, tt.matched)
			}
			if v.DecisionID == "" {
				t.Error("DecisionID is empty")
			}
		})
	}
}

func TestEvaluate_PlanDrift(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	plan := filepath.Join(dir, "docs", "PLAN.md")
	if err := os.WriteFile(plan, []byte(strings.Repeat("- step\n", 20)), 0o644); err != nil {
		t.Fatal(err)
	}
	small := filepath.Join(dir, "feature_plan.md")
	if err := os.WriteFile(small, []byte("- one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := newEngine(t, config.FeedbackConfig{PlanMaxLines: 10, PlanMaxBytes: 1 << 20})

	v := e.Evaluate(context.Background(), Result{Tool: "Write", Success: true, FilePath: "docs/PLAN.md", CWD: dir})
	if v.Status != StatusSuccess || v.BlocksWorkflow {
		t.Fatalf("drift must not block: %+v", v)
	}
	if len(v.Warnings) != 1 || !strings.Contains(v.Warnings[0], "20 lines") {
		t.Errorf("Warnings = %v, want one drift warning", v.Warnings)
	}

	v = e.Evaluate(context.Background(), Result{Tool: "Write", Success: true, FilePath: small})
	if len(v.Warnings) != 0 {
		t.Errorf("small plan file warned: %v", v.Warnings)
	}

	v = e.Evaluate(context.Background(), Result{Tool: "Write", Success: true, FilePath: "docs/README.md", CWD: dir})
	if len(v.Warnings) != 0 {
		t.Errorf("non-plan file warned: %v", v.Warnings)
	}

	v = e.Evaluate(context.Background(), Result{Tool: "Read", Success: true, FilePath: "docs/PLAN.md", CWD: dir})
	if len(v.Warnings) != 0 {
		t.Errorf("read of a plan file warned: %v", v.Warnings)
	}
}

func TestDriftChecker_WritesOnly(t *testing.T) {
	dir := t.TempDir()
	plans := filepath.Join(dir, "documentation", "plans")
	if err := os.MkdirAll(plans, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(plans, "auth.md"), []byte(strings.Repeat("- step\n", 3000)), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := NewDriftChecker(config.DefaultPlanFiles(), 10*1024, 1500)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tool string
		kind classify.ToolKind
		want int
	}{
		{tool: "Edit", want: 1},
		{tool: "MultiEdit", want: 1},
		{tool: "Read", want: 0},
		{tool: "Grep", want: 0},
		{tool: "Bash", want: 0},
		{tool: "custom_writer", kind: classify.ToolWrite, want: 1},
	}
	for _, tt := range tests {
		r := Result{Tool: tt.tool, Kind: tt.kind, FilePath: "documentation/plans/auth.md", CWD: dir}
		if got := d.Check(r); len(got) != tt.want {
			t.Errorf("Check(%s) = %v, want %d warnings", tt.tool, got, tt.want)
		}
	}
}

func TestNew_InvalidGlob(t *testing.T) {
	_, err := New(Options{Config: config.FeedbackConfig{UIGlobs: []string{"[unterminated"}}})
	if err == nil {
		t.Fatal("New() should reject an invalid glob")
	}
}

func TestEvaluate_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	fm := metrics.NewFeedbackMetrics(&config.MetricsConfig{Namespace: "test"}, reg)

	e, err := New(Options{Metrics: fm})
	if err != nil {
		t.Fatal(err)
	}
	e.Evaluate(context.Background(), Result{Tool: "Bash", Success: true})
	e.Evaluate(context.Background(), Result{Tool: "Bash", Success: false})

	if got, err := testutil.GatherAndCount(reg, "test_feedback_verdicts_total"); err != nil || got != 2 {
		t.Errorf("verdict series = %d (err %v), want 2", got, err)
	}
}

func TestResultFromEnvelope(t *testing.T) {
	env, err := hook.Parse([]byte(`{
		"tool_name": "Bash",
		"tool_input": {"command": "go test ./..."},
		"tool_response": {"stdout": "FAIL\tkeelson/x\t0.2s", "is_error": true},
		"changed_files": ["b.go", "a.go"]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	r := ResultFromEnvelope(env)
	if r.Tool != "Bash" || r.Success {
		t.Errorf("Tool/Success = %q/%v", r.Tool, r.Success)
	}
	if r.Kind != classify.ToolExecute || r.Command != "go test ./..." {
		t.Errorf("Kind/Command = %q/%q", r.Kind, r.Command)
	}
	if r.Output != "FAIL\tkeelson/x\t0.2s" {
		t.Errorf("Output = %q", r.Output)
	}
	if got := strings.Join(r.Files(), ","); got != "a.go,b.go" {
		t.Errorf("Files() = %s", got)
	}
}
