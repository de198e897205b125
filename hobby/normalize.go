package hobby

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode normalization and trims whitespace.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	// Drop control characters except newlines and tabs.
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return normed
}

// normalizeKey folds interest text and tags for case-insensitive comparison.
func normalizeKey(s string) string {
	normed := NormalizeText(s)
	if normed == "" {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(normed), " "))
}
