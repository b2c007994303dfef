// Package normalize prepares free text for lexical comparison.
package normalize

import (
	"strings"
	"unicode"
)

// Text lowercases s, replaces every rune outside [a-z0-9] and whitespace
// with a space, collapses whitespace runs into a single space and trims the result.
func Text(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}

		// Anything else, whitespace or not, acts as a separator.
		pendingSpace = true
	}

	return b.String()
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Text(s))
}

// IsNormalized reports whether s is already in the form produced by Text.
func IsNormalized(s string) bool {
	prevSpace := true
	for _, r := range s {
		switch {
		case r == ' ':
			if prevSpace {
				return false
			}
			prevSpace = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			prevSpace = false
		default:
			return false
		}
	}

	return s == "" || !unicode.IsSpace(rune(s[len(s)-1]))
}
