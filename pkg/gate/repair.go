package gate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"
)

// RepairDeclaration confines file writes while a repair is in progress.
// Declarations live as JSON files in the repair directory or as
// FAIL_SCOPE sections in repair documents; the most recently declared one
// is in force until it is removed.
type RepairDeclaration struct {
	ID         string    `json:"id"`
	DeclaredAt time.Time `json:"declared_at"`
	Scope      []string  `json:"scope"`
	Reason     string    `json:"reason,omitempty"`

	// Path is the file the declaration was read from.
	Path string `json:"-"`
}

// LoadRepairDeclarations reads every declaration in dir, newest first.
// Files that cannot be parsed are skipped and reported as warnings.
func LoadRepairDeclarations(dir string) ([]RepairDeclaration, []string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read repair directory %q: %w", dir, err)
	}

	var decls []RepairDeclaration
	var warnings []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("repair declaration %s unreadable: %v", e.Name(), err))
			continue
		}
		var d RepairDeclaration
		if err := json.Unmarshal(data, &d); err != nil {
			warnings = append(warnings, fmt.Sprintf("repair declaration %s malformed: %v", e.Name(), err))
			continue
		}
		if d.DeclaredAt.IsZero() {
			if info, err := e.Info(); err == nil {
				d.DeclaredAt = info.ModTime()
			}
		}
		if d.ID == "" {
			d.ID = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		d.Path = path
		decls = append(decls, d)
	}

	sortDeclarations(decls)
	return decls, warnings, nil
}

var (
	failScopeHeader = regexp.MustCompile(`(?i)FAIL_SCOPE:`)
	failScopeEnd    = regexp.MustCompile(`\n[ \t]*\n|\n#`)
	failScopeFile   = regexp.MustCompile(`(?i)-[ \t]*file:[ \t]*([^\n]+)`)
)

// LoadRepairDocuments reads the markdown and text repair documents under
// base that match patterns, newest first. A document declares a scope
// through the "- file:" entries of its FAIL_SCOPE section; documents
// without entries are ignored.
func LoadRepairDocuments(base string, patterns []string) ([]RepairDeclaration, []string, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(base, p))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid repair document pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !slices.Contains(paths, m) {
				paths = append(paths, m)
			}
		}
	}

	var decls []RepairDeclaration
	var warnings []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("repair document %s unreadable: %v", filepath.Base(path), err))
			continue
		}
		scope := ParseFailScope(string(data))
		if len(scope) == 0 {
			continue
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			rel = path
		}
		decls = append(decls, RepairDeclaration{
			ID:         strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			DeclaredAt: info.ModTime(),
			Scope:      scope,
			Reason:     "FAIL_SCOPE in " + filepath.ToSlash(rel),
			Path:       path,
		})
	}
	sortDeclarations(decls)
	return decls, warnings, nil
}

// ParseFailScope returns the "- file:" entries of the first FAIL_SCOPE
// section in text. The section ends at a blank line or a heading.
func ParseFailScope(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	loc := failScopeHeader.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	section := text[loc[1]:]
	if end := failScopeEnd.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	var scope []string
	for _, m := range failScopeFile.FindAllStringSubmatch(section, -1) {
		entry := strings.Trim(strings.TrimSpace(m[1]), "`\"'")
		if entry != "" && !slices.Contains(scope, entry) {
			scope = append(scope, entry)
		}
	}
	return scope
}

// LoadRepairScopes merges the declarations in dir with the repair
// documents under base, newest first. Read failures in either source are
// returned as warnings.
func LoadRepairScopes(dir, base string, patterns []string) ([]RepairDeclaration, []string) {
	var decls []RepairDeclaration
	var warnings []string
	if dir != "" {
		var err error
		decls, warnings, err = LoadRepairDeclarations(dir)
		if err != nil {
			warnings = append(warnings, "repair declarations skipped: "+err.Error())
		}
	}
	if base != "" && len(patterns) > 0 {
		docs, docWarnings, err := LoadRepairDocuments(base, patterns)
		if err != nil {
			docWarnings = append(docWarnings, "repair documents skipped: "+err.Error())
		}
		decls = append(decls, docs...)
		warnings = append(warnings, docWarnings...)
	}
	sortDeclarations(decls)
	return decls, warnings
}

func sortDeclarations(decls []RepairDeclaration) {
	sort.SliceStable(decls, func(i, j int) bool {
		if !decls[i].DeclaredAt.Equal(decls[j].DeclaredAt) {
			return decls[i].DeclaredAt.After(decls[j].DeclaredAt)
		}
		return decls[i].Path > decls[j].Path
	})
}

// WriteRepairDeclaration stores d in dir, named after its ID.
func WriteRepairDeclaration(dir string, d RepairDeclaration) (string, error) {
	if d.ID == "" {
		return "", errors.New("repair declaration needs an id")
	}
	if strings.ContainsAny(d.ID, `/\`) || d.ID == "." || d.ID == ".." {
		return "", fmt.Errorf("invalid repair declaration id %q", d.ID)
	}
	if d.DeclaredAt.IsZero() {
		d.DeclaredAt = time.Now().UTC()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create repair directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, d.ID+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write repair declaration: %w", err)
	}
	return path, nil
}

// ClearRepairDeclarations removes every declaration in dir and returns how
// many were removed.
func ClearRepairDeclarations(dir string) (int, error) {
	decls, _, err := LoadRepairDeclarations(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range decls {
		if err := os.Remove(d.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return n, fmt.Errorf("failed to remove %s: %w", d.Path, err)
		}
		n++
	}
	return n, nil
}
