// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Truncate returns s truncated to maxLen runes, with "..." appended if
// truncated. Counting runes rather than bytes keeps multi-byte characters
// intact. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// NormalizeWhitespace cleans text extracted from web pages: normalizes line
// endings, collapses runs of spaces and tabs, caps blank runs at one empty
// line, and trims each line. Single newlines are kept since page structure
// often carries meaning.
func NormalizeWhitespace(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	// Trimming can turn whitespace-only lines into new blank runs, so the
	// newline collapse happens after the join.
	text = newlineRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
