package policy

import (
	"sort"
	"strings"

	"keelson-hq/sprintgate/pkg/classify"
)

// DefaultMaxFileSize is the largest existing file a write may modify.
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// DefaultDangerousCommands are command substrings the validator refuses.
var DefaultDangerousCommands = []string{
	"chmod 777", "| sh", "| bash", "git push --force", "git push -f", "git reset --hard",
	"drop database", "drop table", "truncate table", "mkfs", "> /dev/",
}

// DefaultAllowedTools are the tool identifiers the permission filter
// accepts. Comparison is case-insensitive.
var DefaultAllowedTools = []string{
	"Read", "Write", "Edit", "MultiEdit", "NotebookEdit", "Bash", "Grep", "Glob", "LS", "TodoWrite",
	"run_terminal_cmd", "run", "SlashCommand", "Task",
}

// Document is the on-disk policy. Every list present in the file replaces
// the built-in list of the same name; absent keys keep the defaults.
type Document struct {
	// ProtectedFiles match a write target exactly or as a path suffix.
	ProtectedFiles []string `yaml:"protected_files" json:"protected_files"`

	// ProtectedPatterns match a write target as a case-insensitive substring.
	ProtectedPatterns []string `yaml:"protected_patterns" json:"protected_patterns"`

	// ProtectedGlobs match a write target with '/'-separated globs.
	ProtectedGlobs []string `yaml:"protected_globs" json:"protected_globs"`

	// DangerousCommands are substrings the validator refuses in commands.
	DangerousCommands []string `yaml:"dangerous_commands" json:"dangerous_commands"`

	// AllowedTools is the tool allow-list.
	AllowedTools []string `yaml:"allowed_tools" json:"allowed_tools"`

	// AlwaysDangerous commands are refused in every permissive mode.
	AlwaysDangerous []string `yaml:"always_dangerous" json:"always_dangerous"`

	// SafeCommands are auto-allowed in partial permissive mode.
	SafeCommands []string `yaml:"safe_commands" json:"safe_commands"`

	// MaxFileSize caps the size of an existing file a write may modify.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
}

// Default returns the built-in policy.
func Default() *Document {
	return &Document{
		ProtectedFiles:    clone(classify.DefaultProtectedFiles),
		ProtectedPatterns: clone(classify.DefaultProtectedPatterns),
		ProtectedGlobs:    []string{},
		DangerousCommands: clone(DefaultDangerousCommands),
		AllowedTools:      clone(DefaultAllowedTools),
		AlwaysDangerous:   clone(classify.DefaultAlwaysDangerous),
		SafeCommands:      clone(classify.DefaultSafeCommands),
		MaxFileSize:       DefaultMaxFileSize,
	}
}

// Rules is a compiled, immutable policy ready for the gate.
type Rules struct {
	// Source is the file the rules came from, or "" for the built-ins.
	Source string

	// Digest identifies the document content.
	Digest string

	Commands          classify.CommandClassifier
	Files             *classify.FileProtection
	DangerousCommands []string
	MaxFileSize       int64

	allowedTools map[string]bool
	document     *Document
}

// Compile validates the document and builds its matchers.
func (d *Document) Compile() (*Rules, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	files, err := classify.NewFileProtection(d.ProtectedFiles, d.ProtectedPatterns, d.ProtectedGlobs)
	if err != nil {
		return nil, err
	}

	cmds := classify.NewCommandClassifier()
	cmds.AlwaysDangerous = clone(d.AlwaysDangerous)
	cmds.SafeCommands = clone(d.SafeCommands)

	tools := make(map[string]bool, len(d.AllowedTools))
	for _, t := range d.AllowedTools {
		tools[strings.ToLower(strings.TrimSpace(t))] = true
	}

	maxSize := d.MaxFileSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Rules{
		Commands:          cmds,
		Files:             files,
		DangerousCommands: clone(d.DangerousCommands),
		MaxFileSize:       maxSize,
		allowedTools:      tools,
		document:          d.clone(),
	}, nil
}

// MustDefaultRules compiles the built-in policy.
func MustDefaultRules() *Rules {
	r, err := Default().Compile()
	if err != nil {
		panic(err)
	}
	return r
}

// ToolAllowed reports whether tool is on the allow-list.
func (r *Rules) ToolAllowed(tool string) bool {
	return r.allowedTools[strings.ToLower(strings.TrimSpace(tool))]
}

// AllowedTools returns the allow-list, sorted.
func (r *Rules) AllowedTools() []string {
	out := make([]string, 0, len(r.allowedTools))
	for t := range r.allowedTools {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Document returns a copy of the document the rules were compiled from.
func (r *Rules) Document() *Document {
	return r.document.clone()
}

func (d *Document) clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{
		ProtectedFiles:    clone(d.ProtectedFiles),
		ProtectedPatterns: clone(d.ProtectedPatterns),
		ProtectedGlobs:    clone(d.ProtectedGlobs),
		DangerousCommands: clone(d.DangerousCommands),
		AllowedTools:      clone(d.AllowedTools),
		AlwaysDangerous:   clone(d.AlwaysDangerous),
		SafeCommands:      clone(d.SafeCommands),
		MaxFileSize:       d.MaxFileSize,
	}
}

func clone(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
