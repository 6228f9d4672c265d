package util

import (
	"unicode"
)

// IsNumeric reports whether s is a non-empty run of digits.
func IsNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
