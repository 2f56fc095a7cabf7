package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// EqualAny reports whether s, trimmed of surrounding space, equals any of
// vals ignoring case.
func EqualAny(s string, vals ...string) bool {
	s = strings.TrimSpace(s)
	for _, v := range vals {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// Capitalize upper-cases the first rune of s and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
