package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Whitespace runs to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
	// Everything that is not a letter or digit after folding
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// RemoveDiacritics strips combining marks: "Liège" -> "Liege".
func RemoveDiacritics(s string) string {
	// transform.Chain is stateful, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// Fold normalizes text for comparisons: lower case, no diacritics,
// trimmed and with whitespace collapsed to single spaces.
func Fold(s string) string {
	s = RemoveDiacritics(strings.ToLower(s))
	s = multipleSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Slug turns text into a dash separated identifier: "België " -> "belgie".
func Slug(s string) string {
	s = nonSlugChars.ReplaceAllString(Fold(s), "-")
	return strings.Trim(s, "-")
}

// CollapseSpaces trims s and replaces whitespace runs with a single space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(multipleSpaces.ReplaceAllString(s, " "))
}

// ContainsDigit reports whether s contains at least one decimal digit.
func ContainsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
