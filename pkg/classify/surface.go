package classify

import "strings"

// DefaultUIIndicators mark UI work when they occur in a command or a path.
var DefaultUIIndicators = []string{
	".html", ".css", ".js", ".jsx", ".tsx",
	"frontend/", "ui/", "component",
	"chart", "graph", "dashboard", "visual",
	"react", "vue", "angular", "svelte",
}

// DefaultAPIIndicators mark API work the same way.
var DefaultAPIIndicators = []string{"api/"}

// SurfaceClassifier decides from plain substrings whether an action
// touched a user-facing surface. It complements the file globs for
// actions, such as shell commands, that name no target file.
type SurfaceClassifier struct {
	UI  []string
	API []string
}

// NewSurfaceClassifier returns a classifier with the built-in indicators.
func NewSurfaceClassifier() SurfaceClassifier {
	return SurfaceClassifier{UI: DefaultUIIndicators, API: DefaultAPIIndicators}
}

// Classify reports whether any of texts carries a UI or an API indicator.
// Matching is case-insensitive.
func (c SurfaceClassifier) Classify(texts ...string) (ui, api bool) {
	for _, t := range texts {
		t = strings.ToLower(t)
		ui = ui || containsAny(t, c.UI)
		api = api || containsAny(t, c.API)
	}
	return ui, api
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
