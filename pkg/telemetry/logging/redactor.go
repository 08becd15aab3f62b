package logging

import (
	"regexp"
	"strings"
)

// RedactPattern defines an additional redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// Redactor masks secrets that show up in commands and file contents the
// agent hands to the gate before they reach a log line or the audit trail.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternAWSKey      = "aws_access_key"
	PatternGitHubToken = "github_token"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternPrivateKey  = "private_key"
)

// defaultPatterns are applied in order; the ordering keeps the generic
// password rule from eating the more specific token shapes.
var defaultPatterns = []RedactPattern{
	{Name: PatternPrivateKey, Pattern: `-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`, Replacement: "[private key]"},
	{Name: PatternAPIKey, Pattern: `\bsk-[A-Za-z0-9_-]{8,}`, Replacement: "sk-***"},
	{Name: PatternAWSKey, Pattern: `\bAKIA[0-9A-Z]{16}\b`, Replacement: "AKIA***"},
	{Name: PatternGitHubToken, Pattern: `\bgh[pousr]_[A-Za-z0-9]{20,}`, Replacement: "gh*_***"},
	{Name: PatternBearerToken, Pattern: `(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`, Replacement: "Bearer ***"},
	{Name: PatternPassword, Pattern: `(?i)(password|passwd|pwd|secret|token)(\s*[:=]\s*)[^\s'"]+`, Replacement: "$1$2***"},
}

// NewRedactor creates a Redactor with the built-in patterns plus any extra
// ones. Extra patterns that fail to compile are skipped.
func NewRedactor(extra []RedactPattern) *Redactor {
	r := &Redactor{}
	for _, p := range append(append([]RedactPattern{}, defaultPatterns...), extra...) {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{name: p.Name, regex: re, replacement: p.Replacement})
	}
	return r
}

// RedactString masks secrets in a string value.
func (r *Redactor) RedactString(value string) string {
	if r == nil || value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactArgs redacts secrets from variadic log arguments.
// Args are in the form: key1, value1, key2, value2, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if r == nil || len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = "***"
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}
	return redacted
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range []string{"password", "passwd", "secret", "api_key", "apikey", "authorization", "private_key"} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}
