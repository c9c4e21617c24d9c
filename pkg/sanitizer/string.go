package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

// TrimAndNormalize trims s and collapses internal whitespace runs to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeText trims free text but keeps its line structure.
func NormalizeText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NormalizeKey is used for enum-like values: "  Members Only" -> "members_only".
func NormalizeKey(s string) string {
	s = strings.ToLower(TrimAndNormalize(s))
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", "_"), "-", "_")
}

// NormalizeClock left-pads a single-digit hour: "8:30" -> "08:30".
func NormalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[1] == ':' && s[0] >= '0' && s[0] <= '9' {
		return "0" + s
	}
	return s
}

// EscapeRegex quotes s for use inside a database regex filter.
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(TrimAndNormalize(s))
}
