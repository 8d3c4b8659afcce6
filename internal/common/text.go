package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks, e.g. "Brócolis" becomes "Brocolis".
func StripDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// Fold produces a lookup key: diacritics stripped, trimmed and lower-cased.
func Fold(value string) string {
	return strings.ToLower(strings.TrimSpace(StripDiacritics(value)))
}
