package recorder

import "unicode/utf8"

// TruncateString shortens s to at most maxLen bytes, ending in "..." when
// anything was cut. It never splits a UTF-8 sequence.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}

	suffix := "..."
	if maxLen <= len(suffix) {
		suffix = ""
	}

	cut := maxLen - len(suffix)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
