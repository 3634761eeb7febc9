package kelime

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// toLower folds s with Turkish casing rules, so "I" becomes "ı" and "İ"
// becomes "i". A cases.Caser keeps state between calls, so each call gets
// its own.
func toLower(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// isAlpha reports whether s is non-empty and made only of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// runeLen counts code points, the unit every length rule here is written in.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
