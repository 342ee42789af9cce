package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldLoose maps s to a key that ignores case and diacritics, so "Äpfel"
// and "apfel" compare equal. Used for ingredient search.
func FoldLoose(s string) string {
	// Chains keep state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// FoldCase maps s to a key that ignores case only. Used for title search
// and tag name comparisons.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr occurs in s ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(FoldCase(s), FoldCase(substr))
}
