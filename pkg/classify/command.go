package classify

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// DefaultDeletionVerbs are command words that can delete files. They are
// banned outright; no mode or marker lifts the ban.
var DefaultDeletionVerbs = []string{
	"rm", "rmdir", "unlink", "shred", "del", "erase", "srm", "trash", "trash-put", "rd", "deltree", "remove-item",
}

// DefaultDeletionFlags are arguments that turn an otherwise harmless
// command into a deletion (find -delete, rsync --delete, git clean).
var DefaultDeletionFlags = []string{"-delete", "--delete", "--remove-source-files"}

// DefaultAlwaysDangerous are commands refused in every mode.
var DefaultAlwaysDangerous = []string{
	"sudo", "su", "doas", "mkfs", "fdisk", "dd if=", ":(){", "shutdown", "reboot", "poweroff", "halt",
	"> /dev/sd", "chmod -r 777 /", "chown -r", "format c:", "git clean",
}

// DefaultSafeCommands are auto-allowed in partial permissive mode. A
// single word matches the command word of a segment; a multi-word entry
// matches the start of a segment.
var DefaultSafeCommands = []string{
	"ls", "cat", "head", "tail", "less", "grep", "rg", "find", "pwd", "echo", "wc", "diff", "tree", "which",
	"file", "stat", "sort", "uniq", "jq",
	"git status", "git diff", "git log", "git show", "git branch", "git add", "git commit",
	"go test", "go build", "go vet", "go fmt", "gofmt", "npm test", "npm run", "npx tsc", "yarn test",
	"pytest", "python -m pytest", "cargo test", "cargo build", "cargo check", "make",
}

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	controlOperators = regexp.MustCompile(`\|\||&&|[;|&]`)
)

// Normalize lower-cases command text and collapses whitespace runs.
func Normalize(cmd string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToLower(cmd), " "))
}

// isWordRune keeps the characters that can be part of a command word or
// flag. Quotes, backslashes, operators and the like split tokens.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' || r == '/'
}

// Tokens splits normalized command text into words, reducing paths to
// their base name so /bin/rm and ./rm read as rm.
func Tokens(cmd string) []string {
	fields := strings.FieldsFunc(Normalize(cmd), func(r rune) bool { return !isWordRune(r) })
	for i, f := range fields {
		if strings.Contains(f, "/") && f != "/" {
			if base := path.Base(f); base != "." && base != "/" {
				fields[i] = base
			}
		}
	}
	return fields
}

// letterRuns joins consecutive single-letter tokens, which is how spelled
// out evasions such as "r  m" or r""m look after tokenizing.
func letterRuns(tokens []string) []string {
	var runs []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 1 {
			runs = append(runs, run.String())
		}
		run.Reset()
	}
	for _, tok := range tokens {
		if r := []rune(tok); len(r) == 1 && unicode.IsLetter(r[0]) {
			run.WriteString(tok)
			continue
		}
		flush()
	}
	flush()
	return runs
}

// CommandClassifier labels shell command text.
type CommandClassifier struct {
	DeletionVerbs   []string
	DeletionFlags   []string
	AlwaysDangerous []string
	SafeCommands    []string
}

// NewCommandClassifier returns a classifier with the built-in tables.
func NewCommandClassifier() CommandClassifier {
	return CommandClassifier{
		DeletionVerbs:   DefaultDeletionVerbs,
		DeletionFlags:   DefaultDeletionFlags,
		AlwaysDangerous: DefaultAlwaysDangerous,
		SafeCommands:    DefaultSafeCommands,
	}
}

// DeletionVerb returns the first deletion-capable word in cmd.
func (c CommandClassifier) DeletionVerb(cmd string) (string, bool) {
	verbs := toSet(c.DeletionVerbs)
	flags := toSet(c.DeletionFlags)

	tokens := Tokens(cmd)
	for _, tok := range tokens {
		if verbs[tok] || flags[tok] {
			return tok, true
		}
	}
	for _, run := range letterRuns(tokens) {
		for _, v := range c.DeletionVerbs {
			if strings.Contains(run, strings.ToLower(v)) {
				return v, true
			}
		}
	}
	return "", false
}

// Dangerous returns the first always-dangerous entry found in cmd.
func (c CommandClassifier) Dangerous(cmd string) (string, bool) {
	return MatchCommandList(cmd, c.AlwaysDangerous)
}

// IsSafe reports whether every segment of cmd starts with a safe command.
// Segments are separated by ;, &&, || and pipes.
func (c CommandClassifier) IsSafe(cmd string) bool {
	segments := Segments(cmd)
	if len(segments) == 0 {
		return false
	}
	for _, seg := range segments {
		if !startsWithAny(seg, c.SafeCommands) {
			return false
		}
	}
	return true
}

// MatchCommandList returns the first entry of list that occurs in cmd.
// Entries made of a single word match a whole token; any other entry
// matches as a substring of the normalized text.
func MatchCommandList(cmd string, list []string) (string, bool) {
	norm := Normalize(cmd)
	if norm == "" {
		return "", false
	}
	var tokens map[string]bool
	for _, entry := range list {
		e := Normalize(entry)
		if e == "" {
			continue
		}
		if isSingleWord(e) {
			if tokens == nil {
				tokens = toSet(Tokens(cmd))
			}
			if tokens[e] {
				return entry, true
			}
			continue
		}
		if strings.Contains(norm, e) {
			return entry, true
		}
	}
	return "", false
}

// Segments splits command text on shell control operators.
func Segments(cmd string) []string {
	norm := Normalize(cmd)
	parts := controlOperators.Split(norm, -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func startsWithAny(segment string, entries []string) bool {
	words := strings.Fields(segment)
	if len(words) == 0 {
		return false
	}
	first := path.Base(words[0])
	for _, entry := range entries {
		e := Normalize(entry)
		if e == "" {
			continue
		}
		if isSingleWord(e) {
			if first == e {
				return true
			}
			continue
		}
		if segment == e || strings.HasPrefix(segment, e+" ") {
			return true
		}
	}
	return false
}

func isSingleWord(s string) bool {
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[strings.ToLower(v)] = true
	}
	return set
}
