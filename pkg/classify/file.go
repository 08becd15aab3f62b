package classify

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultProtectedFiles are paths matched exactly or as a path suffix.
var DefaultProtectedFiles = []string{
	".env", ".env.local", ".env.production", ".env.development",
	"id_rsa", "id_ed25519", ".npmrc", ".pypirc", ".netrc", ".git-credentials",
	"credentials.json", "service-account.json", ".git/config", ".git/HEAD",
	".sprintgate/state.json", ".sprintgate/policy.yaml", ".sprintgate/config.yaml",
}

// DefaultProtectedPatterns are case-insensitive substrings.
var DefaultProtectedPatterns = []string{
	".ssh/", ".aws/", ".gnupg/", ".kube/config", "secrets/", ".secrets", ".pem", ".p12", ".keystore",
	"/.git/hooks/",
}

// ProtectionMatch describes why a path is protected.
type ProtectionMatch struct {
	Entry string // The policy entry that matched
	Kind  string // "file", "pattern" or "glob"
}

// FileProtection matches file paths against the protected lists.
type FileProtection struct {
	files    []string
	patterns []string
	globs    []compiledGlob
}

type compiledGlob struct {
	pattern string
	glob    glob.Glob
}

// NewFileProtection compiles a protection table. Globs use / as the
// separator, so * stays within one path component and ** crosses them.
func NewFileProtection(files, patterns, globs []string) (*FileProtection, error) {
	fp := &FileProtection{}
	for _, f := range files {
		if f = strings.TrimSpace(f); f != "" {
			fp.files = append(fp.files, strings.ToLower(filepath.ToSlash(f)))
		}
	}
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			fp.patterns = append(fp.patterns, strings.ToLower(filepath.ToSlash(p)))
		}
	}
	for _, g := range globs {
		compiled, err := glob.Compile(g, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid protected glob %q: %w", g, err)
		}
		fp.globs = append(fp.globs, compiledGlob{pattern: g, glob: compiled})
	}
	return fp, nil
}

// Match reports whether path is protected. Protected files match when the
// path equals the entry or ends with it at a path component boundary, so
// ".env" protects "/repo/.env" but not "/repo/.env.example".
func (fp *FileProtection) Match(path string) (ProtectionMatch, bool) {
	if fp == nil || path == "" {
		return ProtectionMatch{}, false
	}
	slashed := filepath.ToSlash(path)
	lower := strings.ToLower(slashed)

	for _, f := range fp.files {
		if lower == f || strings.HasSuffix(lower, "/"+f) {
			return ProtectionMatch{Entry: f, Kind: "file"}, true
		}
	}
	for _, p := range fp.patterns {
		if strings.Contains(lower, p) {
			return ProtectionMatch{Entry: p, Kind: "pattern"}, true
		}
	}
	for _, g := range fp.globs {
		if g.glob.Match(slashed) || g.glob.Match(strings.TrimPrefix(slashed, "/")) {
			return ProtectionMatch{Entry: g.pattern, Kind: "glob"}, true
		}
	}
	return ProtectionMatch{}, false
}

// GlobSet is a compiled list of glob patterns.
type GlobSet struct {
	globs []glob.Glob
}

// NewGlobSet compiles patterns with / as the separator.
func NewGlobSet(patterns []string) (*GlobSet, error) {
	gs := &GlobSet{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", p, err)
		}
		gs.globs = append(gs.globs, g)
	}
	return gs, nil
}

// MustGlobSet is NewGlobSet for built-in tables.
func MustGlobSet(patterns []string) *GlobSet {
	gs, err := NewGlobSet(patterns)
	if err != nil {
		panic(err)
	}
	return gs
}

// Match reports whether any pattern matches path. The path is tried both
// as given and rooted, so "**/api/**" matches "api/x.go" too.
func (gs *GlobSet) Match(path string) bool {
	if gs == nil || path == "" {
		return false
	}
	slashed := filepath.ToSlash(path)
	rooted := slashed
	if !strings.HasPrefix(rooted, "/") {
		rooted = "/" + rooted
	}
	for _, g := range gs.globs {
		if g.Match(slashed) || g.Match(rooted) {
			return true
		}
	}
	return false
}
