package hook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// MaxEnvelopeSize bounds the stdin read.
const MaxEnvelopeSize = 16 << 20

// ErrMalformed is wrapped by every decode failure.
var ErrMalformed = errors.New("malformed hook envelope")

// Envelope is the raw hook input.
type Envelope struct {
	ToolName   string         `json:"tool_name,omitempty"`
	Tool       string         `json:"tool,omitempty"`
	ToolInput  map[string]any `json:"tool_input,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Input      map[string]any `json:"input,omitempty"`

	Prompt   string `json:"prompt,omitempty"`
	Message  string `json:"message,omitempty"`
	FreeText string `json:"free_text,omitempty"`

	CWD       string `json:"cwd,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	EventName string `json:"hook_event_name,omitempty"`

	// Post-action fields.
	ToolResponse json.RawMessage `json:"tool_response,omitempty"`
	Output       string          `json:"output,omitempty"`
	Success      *bool           `json:"success,omitempty"`
	ChangedFiles []string        `json:"changed_files,omitempty"`
}

// Decode reads one envelope from r.
func Decode(r io.Reader) (*Envelope, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxEnvelopeSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrMalformed, err)
	}
	if len(data) > MaxEnvelopeSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrMalformed, MaxEnvelopeSize)
	}
	return Parse(data)
}

// Parse decodes one envelope from data.
func Parse(data []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &env, nil
}

// ToolID returns the tool identifier.
func (e *Envelope) ToolID() string {
	return firstNonEmpty(e.ToolName, e.Tool)
}

// Params returns the tool parameters.
func (e *Envelope) Params() map[string]any {
	if len(e.ToolInput) > 0 {
		return e.ToolInput
	}
	return e.Parameters
}

// Command returns the shell command of an execution tool.
func (e *Envelope) Command() string {
	return stringParam(e.Params(), "command", "cmd")
}

// FilePath returns the file an action targets.
func (e *Envelope) FilePath() string {
	return stringParam(e.Params(), "file_path", "target_file", "path", "notebook_path")
}

// Text returns the free text accompanying the action.
func (e *Envelope) Text() string {
	return firstNonEmpty(e.Prompt, e.Message, e.FreeText, stringParam(e.Input, "message", "prompt"))
}

// OutputText returns the textual result of an executed action. Structured
// responses contribute their string fields in a stable order.
func (e *Envelope) OutputText() string {
	if e.Output != "" {
		return e.Output
	}
	raw := bytes.TrimSpace(e.ToolResponse)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return string(raw)
	}
	var parts []string
	for _, key := range []string{"stdout", "stderr", "output", "content", "result", "error"} {
		if v, ok := obj[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}

// Succeeded reports whether the executed action succeeded. An explicit
// success field wins, then the response's own success or is_error flags.
// Without any signal the action is assumed to have succeeded.
func (e *Envelope) Succeeded() bool {
	if e.Success != nil {
		return *e.Success
	}
	var obj map[string]any
	if err := json.Unmarshal(e.ToolResponse, &obj); err == nil {
		if v, ok := obj["success"].(bool); ok {
			return v
		}
		if v, ok := obj["is_error"].(bool); ok {
			return !v
		}
		if v, ok := obj["interrupted"].(bool); ok && v {
			return false
		}
	}
	return true
}

// Files returns the files the action changed: the explicit list plus the
// targeted file, deduplicated and sorted.
func (e *Envelope) Files() []string {
	seen := map[string]bool{}
	for _, f := range e.ChangedFiles {
		if f != "" {
			seen[f] = true
		}
	}
	if f := e.FilePath(); f != "" {
		seen[f] = true
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func stringParam(params map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := params[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
