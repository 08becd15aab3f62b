package gate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/hook"
)

// ErrInvalidRequest is wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// requestValidate is the validator instance for gate requests.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	_ = requestValidate.RegisterValidation("toolname", validateToolName)
}

// validateToolName accepts printable identifiers without whitespace.
func validateToolName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Request is one proposed action.
type Request struct {
	Tool      string `json:"tool" validate:"required,max=128,toolname"`
	Command   string `json:"command,omitempty" validate:"max=65536"`
	FilePath  string `json:"file_path,omitempty" validate:"max=4096"`
	FreeText  string `json:"free_text,omitempty" validate:"max=1048576"`
	CWD       string `json:"cwd,omitempty" validate:"max=4096"`
	SessionID string `json:"session_id,omitempty" validate:"max=256"`
}

// RequestFromEnvelope extracts a request from a hook envelope.
func RequestFromEnvelope(env *hook.Envelope) Request {
	return Request{
		Tool:      env.ToolID(),
		Command:   env.Command(),
		FilePath:  env.FilePath(),
		FreeText:  env.Text(),
		CWD:       env.CWD,
		SessionID: env.SessionID,
	}
}

// Validate checks the request envelope.
func (r Request) Validate() error {
	if err := requestValidate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Action is a validated request with everything the checks need resolved
// up front.
type Action struct {
	Request

	Kind       ActionKind
	Commands   []classify.WorkflowCommand
	Markers    classify.Markers
	Permissive classify.PermissiveMode
}

// Has reports whether the free text names any of cmds.
func (a *Action) Has(cmds ...classify.WorkflowCommand) bool {
	for _, have := range a.Commands {
		for _, want := range cmds {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Execution reports whether the action carries an execution command.
// Advancing to implementation counts.
func (a *Action) Execution() bool {
	return a.Has(classify.CommandExecution, classify.CommandAdvance)
}

// Mutating reports whether the action consumes a sprint iteration.
func (a *Action) Mutating() bool {
	return a.Kind == KindWrite || a.Kind == KindExecute || a.Execution()
}
