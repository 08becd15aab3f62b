package classify

import "regexp"

// Pattern is a named regular expression.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// DefaultLazyPatterns detect elided or placeholder output.
var DefaultLazyPatterns = []Pattern{
	{"ellipsis-rest", regexp.MustCompile(`(?i)\.\.\.\s*(the\s+)?(rest|remaining)\s+(of\s+)?(the\s+)?(code|implementation|file|function|logic)`)},
	{"elided-comment", regexp.MustCompile(`(?m)^\s*(//|#|/\*)\s*\.\.\.\s*(existing|rest|remaining|more|other)?`)},
	{"existing-code", regexp.MustCompile(`(?i)(existing|remaining|rest of( the)?)\s+code\s+(here|unchanged|remains|stays|goes here)`)},
	{"todo-implement", regexp.MustCompile(`(?i)\bTODO:?\s*implement`)},
	{"todo-block-comment", regexp.MustCompile(`(?i)/\*.*TODO.*\*/`)},
	{"stub-implementation", regexp.MustCompile(`(?i)\bstub(bed)?\s+implementation\b`)},
	{"mock-implementation", regexp.MustCompile(`(?i)\bmock\s+implementation\b`)},
	{"placeholder", regexp.MustCompile(`(?i)\bplaceholder\b`)},
	{"not-implemented", regexp.MustCompile(`(?i)\bnot\s+(yet\s+)?implemented\b`)},
	{"implementation-goes-here", regexp.MustCompile(`(?i)\b(implementation|logic|code)\s+goes\s+here\b`)},
	{"similar-to-above", regexp.MustCompile(`(?i)\b(similar|same)\s+(to|as)\s+(above|before)\b`)},
}

// DefaultErrorSignatures detect failures in command output.
var DefaultErrorSignatures = []Pattern{
	{"traceback", regexp.MustCompile(`Traceback \(most recent call last\)`)},
	{"python-exception", regexp.MustCompile(`\b(SyntaxError|TypeError|ValueError|KeyError|IndexError|AttributeError|ImportError|ModuleNotFoundError|NameError|RuntimeError|AssertionError|ZeroDivisionError|FileNotFoundError|PermissionError|RecursionError)\b`)},
	{"js-exception", regexp.MustCompile(`\b(ReferenceError|RangeError|UnhandledPromiseRejection\w*)\b|Cannot find module`)},
	{"jvm-exception", regexp.MustCompile(`\b(NullPointerException|IllegalArgumentException|IllegalStateException|ClassNotFoundException|StackOverflowError|OutOfMemoryError)\b`)},
	{"go-panic", regexp.MustCompile(`(?m)^panic: |^fatal error: |--- FAIL: |\bFAIL\s+\S+\s+[\d.]+s\b`)},
	{"segfault", regexp.MustCompile(`(?i)segmentation fault|core dumped`)},
	{"compile-error", regexp.MustCompile(`(?i)\berror TS\d+|\berror\[E\d+\]|compilation (failed|terminated)|build failed|undefined reference to`)},
	{"shell-error", regexp.MustCompile(`(?i)command not found|no such file or directory|permission denied`)},
	{"npm-error", regexp.MustCompile(`npm ERR!`)},
	{"test-failure", regexp.MustCompile(`(?m)^FAILED |\b\d+ (failed|failing)\b`)},
}

// OutputClassifier labels the textual result of an action.
type OutputClassifier struct {
	Lazy   []Pattern
	Errors []Pattern
}

// NewOutputClassifier returns a classifier with the built-in tables.
func NewOutputClassifier() OutputClassifier {
	return OutputClassifier{Lazy: DefaultLazyPatterns, Errors: DefaultErrorSignatures}
}

// LazyMatch returns the first lazy-output pattern found in text.
func (c OutputClassifier) LazyMatch(text string) (Pattern, string, bool) {
	return firstMatch(c.Lazy, text)
}

// ErrorMatch returns the first error signature found in text.
func (c OutputClassifier) ErrorMatch(text string) (Pattern, string, bool) {
	return firstMatch(c.Errors, text)
}

func firstMatch(patterns []Pattern, text string) (Pattern, string, bool) {
	for _, p := range patterns {
		if m := p.Regex.FindString(text); m != "" {
			return p, m, true
		}
	}
	return Pattern{}, "", false
}
