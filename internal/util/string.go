package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ellipsis is the single-rune truncation marker used for reports and posts.
const Ellipsis = "…"

var whitespaceRun = regexp.MustCompile(`\s+`)

// CapRunes keeps s when it fits in limit runes, otherwise the first keep runes plus Ellipsis.
func CapRunes(s string, limit, keep int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if keep > len(runes) {
		keep = len(runes)
	}
	return string(runes[:keep]) + Ellipsis
}

// CollapseWhitespace replaces every whitespace run with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Mask hides all but the first and last three characters of a secret for logging.
func Mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	runes := []rune(s)
	if len(runes) <= 6 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:3]) + Ellipsis + string(runes[len(runes)-3:])
}

// Contains checks if a string slice contains a specific item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
