package utils

import (
	"github.com/agnivade/levenshtein"
)

// TypoCount returns the number of single character edits between a and b
// after folding both (case, diacritics and whitespace are ignored).
// A result of 0 means the strings are considered equal.
func TypoCount(a, b string) int {
	return levenshtein.ComputeDistance(Fold(a), Fold(b))
}

// IsTypoEqual reports whether a and b are equal ignoring case, diacritics
// and surrounding whitespace.
func IsTypoEqual(a, b string) bool {
	return TypoCount(a, b) == 0
}
