package gate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"keelson-hq/sprintgate/pkg/boundary"
	"keelson-hq/sprintgate/pkg/classify"
)

// checkValidator is the last line: deletion ban and dangerous commands for
// execution, protection and containment for writes. The deletion ban and
// the workspace boundary deny outright; the remaining sub-checks degrade
// to warnings when they cannot complete.
func checkValidator(ctx context.Context, ev *Evaluation) (Outcome, error) {
	switch ev.Action.Kind {
	case KindExecute:
		return validateCommand(ev), nil
	case KindWrite:
		return validateWrite(ctx, ev)
	default:
		return Pass(""), nil
	}
}

func validateCommand(ev *Evaluation) Outcome {
	cmd := ev.Action.Command
	if cmd == "" {
		return Pass("no command to validate")
	}

	if verb, ok := ev.Rules.Commands.DeletionVerb(cmd); ok {
		return Deny(SeverityCritical, fmt.Sprintf("absolute %s ban: deletion commands are never allowed", verb)).
			WithGuidance("File deletion is not permitted; ask the operator to remove files")
	}

	norm := classify.Normalize(cmd)
	for _, dc := range ev.Rules.DangerousCommands {
		if d := classify.Normalize(dc); d != "" && strings.Contains(norm, d) {
			return Deny(SeverityCritical, fmt.Sprintf("dangerous command detected: %s", dc))
		}
	}
	return Pass("command validation passed")
}

func validateWrite(ctx context.Context, ev *Evaluation) (Outcome, error) {
	a := ev.Action
	if a.FilePath == "" {
		return Pass("no file path specified"), nil
	}
	target := ev.Target()

	for _, p := range []string{a.FilePath, target} {
		if m, ok := ev.Rules.Files.Match(p); ok {
			sev := SeverityHigh
			if m.Kind == "pattern" {
				sev = SeverityMedium
			}
			return Deny(sev, fmt.Sprintf("protected file modification attempt: %s matches protected %s %q", a.FilePath, m.Kind, m.Entry)), nil
		}
	}

	var warnings []string
	info, err := os.Stat(target)
	switch {
	case err == nil:
		if info.Mode().IsRegular() && info.Size() > ev.Rules.MaxFileSize {
			return Deny(SeverityMedium, fmt.Sprintf("file too large for modification: %d bytes (limit %d)", info.Size(), ev.Rules.MaxFileSize)), nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		warnings = append(warnings, fmt.Sprintf("size check skipped for %s: %v", a.FilePath, err))
	}

	root := ev.Root(ctx)
	if root == "" {
		return Deny(SeverityHigh, "workspace root unavailable; file writes are denied").
			WithGuidance("Run the agent inside a git worktree or configure a static boundary root"), nil
	}
	if !boundary.IsWithin(target, root) {
		return Deny(SeverityHigh, fmt.Sprintf("%s is outside the workspace root %s", a.FilePath, root)).
			WithAllowedPaths([]string{root}).
			WithGuidance("Each worktree is one feature namespace; write only inside it"), nil
	}

	if ev.Snapshot.Usable() && ev.Sprint().Locked() {
		if out := sprintScope(ctx, ev); out.Denied {
			return out, nil
		}
	}

	out := repairScope(ctx, ev, target)
	out.Warnings = append(warnings, out.Warnings...)
	if out.Denied {
		return out, nil
	}
	return Pass("file operation validation passed").WithWarningsFrom(out), nil
}

// repairScope confines writes to the newest repair declaration's scope.
// Declarations that cannot be read only produce warnings.
func repairScope(ctx context.Context, ev *Evaluation, target string) Outcome {
	if ev.Config.RepairDir == "" && len(ev.Config.RepairDocuments) == 0 {
		return Pass("")
	}
	base := ev.Base(ctx)
	dir := ev.Config.RepairDir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}

	decls, warnings := LoadRepairScopes(dir, base, ev.Config.RepairDocuments)
	out := Pass("")
	for _, w := range warnings {
		out = out.WithWarning(w)
	}
	if len(decls) == 0 {
		return out
	}

	current := decls[0]
	if boundary.IsWithinAny(target, current.Scope, base) {
		out.Reason = fmt.Sprintf("%s is within repair %s scope", ev.Action.FilePath, current.ID)
		return out
	}
	deny := Deny(SeverityHigh, fmt.Sprintf("%s is outside repair %s scope", ev.Action.FilePath, current.ID)).
		WithAllowedPaths(current.Scope).
		WithGuidance("While a repair is declared only its scope may change; clear the declaration when done")
	deny.Warnings = out.Warnings
	return deny
}
