package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares word text for storage and comparison:
//   - trims leading/trailing whitespace
//   - composes to Unicode NFC
//   - converts to lowercase
//   - compresses internal whitespace runs into a single space
//
// Diacritics, hyphens, and apostrophes are preserved. Lowercasing keeps
// letters such as "ß" intact, so "Maße" and "Masse" stay distinct words.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	// Casers carry state and must not be shared between goroutines.
	text = cases.Lower(language.Und).String(norm.NFC.String(text))

	return strings.Join(strings.Fields(text), " ")
}
