package feedback

import (
	"slices"

	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/hook"
)

// Result is what an executed action produced.
type Result struct {
	Tool         string
	Kind         classify.ToolKind // resolved from Tool when empty
	Command      string
	Output       string
	Success      bool
	FilePath     string
	ChangedFiles []string
	CWD          string
	SessionID    string
}

// ResultFromEnvelope extracts a result from a post-action hook envelope.
func ResultFromEnvelope(env *hook.Envelope) Result {
	return Result{
		Tool:         env.ToolID(),
		Kind:         classify.KindOfTool(env.ToolID()),
		Command:      env.Command(),
		Output:       env.OutputText(),
		Success:      env.Succeeded(),
		FilePath:     env.FilePath(),
		ChangedFiles: env.Files(),
		CWD:          env.CWD,
		SessionID:    env.SessionID,
	}
}

// Files returns every file the action touched, the target first.
func (r Result) Files() []string {
	var files []string
	if r.FilePath != "" {
		files = append(files, r.FilePath)
	}
	for _, f := range r.ChangedFiles {
		if f != "" && !slices.Contains(files, f) {
			files = append(files, f)
		}
	}
	return files
}

func (r Result) toolName() string {
	if r.Tool == "" {
		return "tool"
	}
	return r.Tool
}

func (r Result) kind() classify.ToolKind {
	if r.Kind != "" {
		return r.Kind
	}
	return classify.KindOfTool(r.Tool)
}
