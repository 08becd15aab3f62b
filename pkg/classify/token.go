package classify

import "strings"

// DefaultReadinessTokens hand work to the next workflow role.
var DefaultReadinessTokens = []string{
	"READY_FOR_CODER",
	"READY_FOR_TESTER",
	"READY_FOR_EVALUATOR",
	"READY_FOR_EVALUATION_COMPLETE",
	"READY_FOR_REVIEW",
	"SPRINT_COMPLETE",
}

// DefaultEvaluationTokens are the readiness tokens that hand work to the
// evaluator and therefore need sanity-check and UI-artifact proof.
var DefaultEvaluationTokens = []string{"READY_FOR_EVALUATOR"}

// TokenClassifier checks workflow-readiness tokens in agent output.
type TokenClassifier struct {
	Tokens     []string
	Evaluation []string
}

// NewTokenClassifier returns a classifier with the built-in tokens.
func NewTokenClassifier() TokenClassifier {
	return TokenClassifier{Tokens: DefaultReadinessTokens, Evaluation: DefaultEvaluationTokens}
}

// Present returns the first readiness token that occurs anywhere in text.
func (c TokenClassifier) Present(text string) (string, bool) {
	for _, tok := range c.Tokens {
		if strings.Contains(text, tok) {
			return tok, true
		}
	}
	return "", false
}

// All returns every readiness token that occurs in text, in table order.
func (c TokenClassifier) All(text string) []string {
	var out []string
	for _, tok := range c.Tokens {
		if strings.Contains(text, tok) {
			out = append(out, tok)
		}
	}
	return out
}

// EvaluationRequested returns the evaluation token text carries, if any.
func (c TokenClassifier) EvaluationRequested(text string) (string, bool) {
	for _, tok := range c.Evaluation {
		if strings.Contains(text, tok) {
			return tok, true
		}
	}
	return "", false
}

// Isolated reports whether every line mentioning token holds the token
// alone and is the first line or follows a blank or comment-only line.
// It returns false when token does not occur at all.
func (c TokenClassifier) Isolated(text, token string) bool {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	found := false
	for i, line := range lines {
		if !containsToken(line, token) {
			continue
		}
		found = true
		if strings.TrimSpace(line) != token {
			return false
		}
		if i == 0 {
			continue
		}
		prev := strings.TrimSpace(lines[i-1])
		if prev != "" && !isCommentOnly(prev) {
			return false
		}
	}
	return found
}

// containsToken matches token as a word so READY_FOR_EVALUATOR does not
// claim lines carrying READY_FOR_EVALUATORS or a longer token.
func containsToken(line, token string) bool {
	for off := 0; ; {
		i := strings.Index(line[off:], token)
		if i < 0 {
			return false
		}
		start, end := off+i, off+i+len(token)
		if (start == 0 || !isTokenByte(line[start-1])) && (end == len(line) || !isTokenByte(line[end])) {
			return true
		}
		off = start + 1
	}
}

func isTokenByte(b byte) bool {
	return b == '_' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

var commentPrefixes = []string{"#", "//", "--", "<!--", "/*", "*", ";"}

func isCommentOnly(line string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
