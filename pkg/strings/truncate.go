// Package strings holds small text helpers shared by the CLI and the
// event recorder.
package strings

import (
	"strings"
	"unicode/utf8"
)

// DefaultCellMaxLen is the default maximum length of a table cell.
const DefaultCellMaxLen = 60

// MinTruncateLen is the minimum maxLen accepted by the truncation helpers.
// Smaller values would not leave room for content plus "...".
const MinTruncateLen = 4

// SingleLine collapses every run of whitespace (including newlines) into a
// single space and truncates the result to maxLen runes, ending in "..." when
// cut. maxLen below MinTruncateLen is clamped.
func SingleLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// TruncateBytes shortens s to at most maxBytes bytes, ending in "..." when
// cut. The cut never splits a UTF-8 sequence. maxLen below MinTruncateLen is
// clamped.
func TruncateBytes(s string, maxBytes int) string {
	if maxBytes < MinTruncateLen {
		maxBytes = MinTruncateLen
	}
	if len(s) <= maxBytes {
		return s
	}

	cut := maxBytes - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
