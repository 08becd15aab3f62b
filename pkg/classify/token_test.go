package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenClassifier_Isolated(t *testing.T) {
	c := NewTokenClassifier()
	const tok = "READY_FOR_EVALUATOR"

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"glued to previous line", "...done\nREADY_FOR_EVALUATOR", false},
		{"after blank line", "...done\n\nREADY_FOR_EVALUATOR", true},
		{"only line", "READY_FOR_EVALUATOR", true},
		{"after comment", "# summary\nREADY_FOR_EVALUATOR", true},
		{"after html comment", "<!-- status -->\nREADY_FOR_EVALUATOR", true},
		{"inline", "I am READY_FOR_EVALUATOR now", false},
		{"trailing text", "done\n\nREADY_FOR_EVALUATOR!", false},
		{"crlf", "done\r\n\r\nREADY_FOR_EVALUATOR\r\n", true},
		{"inline mention before isolated token", "I will emit READY_FOR_EVALUATOR now\n\nREADY_FOR_EVALUATOR", false},
		{"isolated twice", "READY_FOR_EVALUATOR\n\nREADY_FOR_EVALUATOR", true},
		{"longer token is not this one", "READY_FOR_EVALUATORS pending\n\nREADY_FOR_EVALUATOR", true},
		{"absent", "nothing to see", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Isolated(tt.text, tok); got != tt.want {
				t.Errorf("Isolated(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenClassifier_Present(t *testing.T) {
	c := NewTokenClassifier()

	if tok, ok := c.Present("all done\n\nREADY_FOR_REVIEW"); !ok || tok != "READY_FOR_REVIEW" {
		t.Errorf("Present() = (%q, %v), want READY_FOR_REVIEW", tok, ok)
	}
	if _, ok := c.Present("ready for review"); ok {
		t.Error("tokens are case-sensitive")
	}
}

func TestTokenClassifier_All(t *testing.T) {
	c := NewTokenClassifier()

	got := c.All("READY_FOR_TESTER\n\nREADY_FOR_CODER\n\nREADY_FOR_EVALUATION_COMPLETE")
	want := []string{"READY_FOR_CODER", "READY_FOR_TESTER", "READY_FOR_EVALUATION_COMPLETE"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenClassifier_EvaluationRequested(t *testing.T) {
	c := NewTokenClassifier()

	if tok, ok := c.EvaluationRequested("done\n\nREADY_FOR_EVALUATOR"); !ok || tok != "READY_FOR_EVALUATOR" {
		t.Errorf("EvaluationRequested() = (%q, %v)", tok, ok)
	}
	for _, text := range []string{"READY_FOR_CODER", "READY_FOR_TESTER", "READY_FOR_EVALUATION_COMPLETE", "READY_FOR_REVIEW"} {
		if _, ok := c.EvaluationRequested(text); ok {
			t.Errorf("EvaluationRequested(%q) = true, want false", text)
		}
	}
}
