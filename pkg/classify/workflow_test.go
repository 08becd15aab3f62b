package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWorkflowClassifier_Commands(t *testing.T) {
	c := NewWorkflowClassifier()

	tests := []struct {
		text string
		want []WorkflowCommand
	}{
		{"/startnewsprint auth", []WorkflowCommand{CommandSprintStart}},
		{"/startprojectplanning", []WorkflowCommand{CommandFoundationStart}},
		{"/projectstatus", []WorkflowCommand{CommandPlanning}},
		{"/startsprintplanning checkout", []WorkflowCommand{CommandPlanning}},
		{"/listsprints", []WorkflowCommand{CommandPlanning}},
		{"/deepselfassessment", []WorkflowCommand{CommandPlanning}},
		{"please start-new-sprint", []WorkflowCommand{CommandSprintStart}},
		{"/start_foundation", []WorkflowCommand{CommandFoundationStart}},
		{"/plan then /plan again", []WorkflowCommand{CommandPlanning}},
		{"/implement the login form", []WorkflowCommand{CommandExecution}},
		{"implement the login form", nil},
		{"/advance-to-implementation", []WorkflowCommand{CommandAdvance}},
		{"/execute then /end-sprint", []WorkflowCommand{CommandExecution, CommandSprintEnd}},
		{"I planned a sprint yesterday", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Commands(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Commands(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}
