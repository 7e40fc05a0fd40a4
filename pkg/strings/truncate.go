// Package strings holds text helpers for terminal output.
package strings

import (
	"strings"
)

// minTruncateLen leaves room for one character plus the ellipsis.
const minTruncateLen = 4

// SingleLine collapses every run of whitespace, including newlines, into a
// single space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns s on a single line, cut to at most maxLen runes with a
// trailing "..." when shortened. maxLen below 4 is treated as 4.
func Truncate(s string, maxLen int) string {
	maxLen = max(maxLen, minTruncateLen)

	s = SingleLine(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
