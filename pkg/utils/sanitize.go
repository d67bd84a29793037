package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string
func StripHTML(input string) string {
	return htmlTag.ReplaceAllString(input, "")
}

// TruncateString cuts s to at most maxLen runes.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// SanitizeMealText cleans a free-text meal description before it reaches
// the analyzer.
func SanitizeMealText(input string, maxLen int) string {
	input = strings.TrimSpace(StripHTML(input))
	input = strings.Join(strings.Fields(input), " ")
	return TruncateString(input, maxLen)
}
