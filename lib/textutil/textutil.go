package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Collapse replaces every run of whitespace with a single space and
// trims both ends, dropping non-printable characters along the way.
func Collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			b.WriteRune(c)
		}
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(b.String(), " "))
}

// NormalizeName lowercases and collapses a string so it can be compared
// against a fixed set of placeholder values.
func NormalizeName(name string) string {
	return strings.ToLower(Collapse(name))
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if name == m {
			return true
		}
	}
	return false
}

// Truncate cuts s to at most limit characters (not bytes).
func Truncate(s string, limit int) string {
	if limit < 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// Length returns the number of characters in s.
func Length(s string) int {
	return len([]rune(s))
}

// SmartTruncate cuts s to limit characters, backing off to the last word
// boundary when it is close enough to the limit, and appends "...".
func SmartTruncate(s string, limit int) string {
	if Length(s) <= limit {
		return s
	}
	cut := []rune(Truncate(s, limit))
	lastSpace := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == ' ' {
			lastSpace = i
			break
		}
	}
	if lastSpace > int(float64(limit)*0.8) {
		cut = cut[:lastSpace]
	}
	return string(cut) + "..."
}
