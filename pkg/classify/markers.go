package classify

import (
	"regexp"
	"strings"
)

// PermissiveMode alters the tool-permission filter's auto-allow behaviour.
type PermissiveMode string

const (
	// PermissiveNone requires approval for every non-dangerous command.
	PermissiveNone PermissiveMode = "none"
	// PermissivePartial auto-allows commands on the safe list.
	PermissivePartial PermissiveMode = "partial"
	// PermissiveFull auto-allows every command that is not always-dangerous.
	PermissiveFull PermissiveMode = "full"
)

// ParsePermissiveMode converts a configuration value, defaulting to none.
func ParsePermissiveMode(s string) PermissiveMode {
	switch PermissiveMode(strings.ToLower(strings.TrimSpace(s))) {
	case PermissiveFull:
		return PermissiveFull
	case PermissivePartial:
		return PermissivePartial
	default:
		return PermissiveNone
	}
}

// Free-text markers.
var (
	overrideMarker   = regexp.MustCompile(`(?i)\bOPERATOR[_ ]OVERRIDE\b`)
	bypassMarker     = regexp.MustCompile(`(?i)(^|\s)--bypass-foundation\b`)
	selfAssessMarker = regexp.MustCompile(`(?i)\bSELF[_ -]ASSESSMENT\s*:|(^|\s)--assessment-complete\b`)
	permissiveMarker = regexp.MustCompile(`(?i)\bPERMISSIVE[_ ]MODE\s*[:=]\s*(full|partial|none)\b`)
	permissiveFlag   = regexp.MustCompile(`(?i)(?:^|\s)--(somewhat-?)?permissive\b`)
	sanityMarker     = regexp.MustCompile(`\bSANITY_CHECK_(PASS|COMPLETE)\b|(?i:\bSANITY[_ ]CHECK\s*:\s*PASS(ED)?\b)`)
	uiArtifactMarker = regexp.MustCompile(`(?i)\bUI artifacts provided by human\?\s*=\s*yes\b|\bscreenshot\s+(saved|captured|taken)\b|\bUI_ARTIFACT_CONFIRMED\b`)
	invalidScope     = regexp.MustCompile(`\bINVALID_SCOPE\b`)
)

// Markers holds the facts the gate and feedback engine read from free text.
type Markers struct {
	Override         bool
	FoundationBypass bool
	SelfAssessment   bool
	Permissive       PermissiveMode // "" when the text carries no marker
}

// ScanMarkers reads markers from free text. An explicit PERMISSIVE_MODE
// value wins over the --permissive and --somewhatpermissive flags.
func ScanMarkers(text string) Markers {
	m := Markers{
		Override:         overrideMarker.MatchString(text),
		FoundationBypass: bypassMarker.MatchString(text),
		SelfAssessment:   selfAssessMarker.MatchString(text),
	}
	if sub := permissiveMarker.FindStringSubmatch(text); sub != nil {
		m.Permissive = ParsePermissiveMode(sub[1])
	} else if sub := permissiveFlag.FindStringSubmatch(text); sub != nil {
		m.Permissive = PermissiveFull
		if sub[1] != "" {
			m.Permissive = PermissivePartial
		}
	}
	return m
}

// HasSanityCheck reports whether output carries a passed sanity check.
func HasSanityCheck(text string) bool {
	return sanityMarker.MatchString(text)
}

// HasUIArtifact reports whether output confirms a UI artifact.
func HasUIArtifact(text string) bool {
	return uiArtifactMarker.MatchString(text)
}

// HasInvalidScope reports whether output carries the invalid-scope marker.
func HasInvalidScope(text string) bool {
	return invalidScope.MatchString(text)
}
