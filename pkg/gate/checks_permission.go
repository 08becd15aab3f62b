package gate

import (
	"context"
	"fmt"

	"keelson-hq/sprintgate/pkg/classify"
)

// checkToolPermission applies the tool allow-list and, for commands, the
// permissive mode.
func checkToolPermission(_ context.Context, ev *Evaluation) (Outcome, error) {
	a := ev.Action
	rules := ev.Rules

	if !rules.ToolAllowed(a.Tool) {
		return Deny(SeverityHigh, fmt.Sprintf("tool %q is not on the allow-list", a.Tool)).
			WithGuidance("Use only the tools listed in the policy's allowed_tools"), nil
	}
	if a.Kind != KindExecute || a.Command == "" {
		return Pass(fmt.Sprintf("tool %s permitted", a.Tool)), nil
	}

	if entry, ok := rules.Commands.Dangerous(a.Command); ok {
		return Deny(SeverityCritical, fmt.Sprintf("%q is always dangerous and cannot be approved", entry)).
			WithGuidance("This operation is refused in every permissive mode"), nil
	}

	switch a.Permissive {
	case classify.PermissiveFull:
		return Pass("command auto-approved in full permissive mode"), nil
	case classify.PermissivePartial:
		if rules.Commands.IsSafe(a.Command) {
			return Pass("safe command auto-approved in partial permissive mode"), nil
		}
		return Deny(SeverityMedium, "command is not on the safe list and requires operator approval").
			WithApproval().
			WithGuidance("Review the command and approve it, or use PERMISSIVE_MODE=full for trusted work"), nil
	default:
		return Deny(SeverityMedium, "command requires operator approval").
			WithApproval().
			WithGuidance("Review the command and approve it, or use PERMISSIVE_MODE=partial or full for trusted work"), nil
	}
}
