package policy

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks the document for semantic problems. All problems are
// collected into one *ValidationError.
func (d *Document) Validate() error {
	var errs []FieldError

	errs = append(errs, nonEmptyEntries("protected_files", d.ProtectedFiles)...)
	errs = append(errs, nonEmptyEntries("protected_patterns", d.ProtectedPatterns)...)
	errs = append(errs, nonEmptyEntries("dangerous_commands", d.DangerousCommands)...)
	errs = append(errs, nonEmptyEntries("always_dangerous", d.AlwaysDangerous)...)
	errs = append(errs, nonEmptyEntries("safe_commands", d.SafeCommands)...)
	errs = append(errs, nonEmptyEntries("allowed_tools", d.AllowedTools)...)

	for i, g := range d.ProtectedGlobs {
		if _, err := glob.Compile(g, '/'); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("protected_globs[%d]", i),
				Message: fmt.Sprintf("invalid glob %q: %v", g, err),
			})
		}
	}

	if len(d.AllowedTools) == 0 {
		errs = append(errs, FieldError{Field: "allowed_tools", Message: "at least one tool must be allowed"})
	}
	if d.MaxFileSize < 0 {
		errs = append(errs, FieldError{Field: "max_file_size", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func nonEmptyEntries(field string, list []string) []FieldError {
	var errs []FieldError
	for i, v := range list {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("%s[%d]", field, i), Message: "entry is empty"})
		}
	}
	return errs
}
