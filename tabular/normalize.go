// Package tabular - CSV table utilities shared by the annotation pipeline.
package tabular

import "strings"

// NormalizeID canonicalizes an identifier-like value so lookups match across
// CSV files that disagree on numeric-string encoding. A trailing ".0" is
// collapsed ("123.0" becomes "123") when the value contains exactly one dot
// and is otherwise purely numeric; anything else is returned trimmed. An
// empty or missing value normalizes to "", which never matches a valid id.
//
// Arguments:
// - value: Raw scalar representation of an identifier.
//
// Returns:
// - string: The canonical identifier.
func NormalizeID(value string) string {
	text := strings.TrimSpace(value)
	if !strings.HasSuffix(text, ".0") {
		return text
	}
	if strings.Count(text, ".") != 1 {
		return text
	}
	if !isDigits(strings.ReplaceAll(text, ".", "")) {
		return text
	}
	return text[:len(text)-2]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
