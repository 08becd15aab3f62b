package gate

import (
	"errors"
	"testing"

	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/hook"
)

func TestKindOf(t *testing.T) {
	tests := map[string]ActionKind{
		"Read":             KindRead,
		"write":            KindWrite,
		"MultiEdit":        KindWrite,
		"BASH":             KindExecute,
		"run_terminal_cmd": KindExecute,
		"TodoWrite":        KindOther,
		"":                 KindOther,
	}
	for tool, want := range tests {
		if got := KindOf(tool); got != want {
			t.Errorf("KindOf(%q) = %q, want %q", tool, got, want)
		}
	}
}

func TestRequestFromEnvelope(t *testing.T) {
	env, err := hook.Parse([]byte(`{
		"tool_name": "Edit",
		"tool_input": {"target_file": "src/a.go"},
		"prompt": "/implement",
		"cwd": "/work",
		"session_id": "s-1"
	}`))
	if err != nil {
		t.Fatal(err)
	}

	req := RequestFromEnvelope(env)
	want := Request{Tool: "Edit", FilePath: "src/a.go", FreeText: "/implement", CWD: "/work", SessionID: "s-1"}
	if req != want {
		t.Errorf("RequestFromEnvelope() = %+v, want %+v", req, want)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestRequestValidate(t *testing.T) {
	err := Request{Tool: "two words"}.Validate()
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Validate() error = %v, want ErrInvalidRequest", err)
	}
}

func TestActionPredicates(t *testing.T) {
	a := &Action{Kind: KindOther, Commands: []classify.WorkflowCommand{classify.CommandAdvance}}
	if !a.Execution() || !a.Mutating() {
		t.Error("advance should count as an execution command")
	}

	read := &Action{Kind: KindRead}
	if read.Mutating() {
		t.Error("reads must not be mutating")
	}
}
