package kelime

import (
	"github.com/dlclark/regexp2"
)

// Category tags what kind of text a Token holds.
type Category int

const (
	Word Category = iota
	MWE
	Email
	URL
	Date
	Time
	Number
	Hashtag
	EndOfSentencePunctuation
	Other
)

var categoryNames = [...]string{
	Word:                     "WORD",
	MWE:                      "MWE",
	Email:                    "EMAIL",
	URL:                      "URL",
	Date:                     "DATE",
	Time:                     "TIME",
	Number:                   "NUMBER",
	Hashtag:                  "HASHTAG",
	EndOfSentencePunctuation: "END_OF_SENTENCE_PUNCTUATION",
	Other:                    "OTHER",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "UNKNOWN"
	}
	return categoryNames[c]
}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// ═══════════════════════════════════════════════════════════════════════════════
// PATTERNS
// ═══════════════════════════════════════════════════════════════════════════════
// Every pattern is anchored with \G, so it only matches at the position the
// search starts from. regexp2 is used for its Unicode-aware \b: with the
// standard library "şu" would not end at a word boundary because 'u' follows
// a non-ASCII letter.
//
// Order matters. "10.05.2024" is tried as a date before it can fall through to
// a number, and a number before a word. The first pattern that matches wins.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	letters      = `a-zA-ZçğıöşüâîûÇĞİÖŞÜÂÎÛ`
	lowerLetters = `a-zçğıöşüâîû`

	// Possessive/case suffix after a proper noun or numeral: Ankara'da, 1990'lı.
	apostropheSuffix = `(?:['’][` + lowerLetters + `]+)?`
)

type pattern struct {
	category Category
	re       *regexp2.Regexp
}

func mustAnchored(expr string) *regexp2.Regexp {
	return regexp2.MustCompile(`\G(?:`+expr+`)`, regexp2.None)
}

// tokenPatterns are tried in order after the MWE check.
var tokenPatterns = []pattern{
	{Email, mustAnchored(`[a-zA-Z0-9]+(?:[._-][a-zA-Z0-9]+)*@(?:[a-zA-Z]+\.)+[a-zA-Z]{2,}\b`)},
	{URL, mustAnchored(`(?:https?://)?(?:www\.)?(?:[a-zA-Z0-9]+\.)+[a-zA-Z]{2,}(?:/[a-zA-Z0-9=&%+_?.~#:@-]*)*\b`)},
	{Date, mustAnchored(`(?:0?[1-9]|[12][0-9]|3[01])([./])(?:0?[1-9]|1[0-2])\1[0-9]{4}` + apostropheSuffix + `\b`)},
	{Time, mustAnchored(`(?:[01]?[0-9]|2[0-3]):[0-5][0-9](?::[0-5][0-9])?` + apostropheSuffix + `\b`)},
	{Number, mustAnchored(`[0-9]+(?:[.,][0-9]{3})*(?:[.,][0-9]+)?` + apostropheSuffix + `\b`)},
	{Hashtag, mustAnchored(`#[` + letters + `0-9_]+\b`)},
	{Word, mustAnchored(`[` + letters + `]+(?:-[` + letters + `]+)*` + apostropheSuffix + `\b`)},
	{EndOfSentencePunctuation, mustAnchored(`\.\.\.|[.!?…]`)},
}

// letterSequence is one candidate word of a multi-word expression. Shorter
// fragments cannot extend an expression.
var letterSequence = mustAnchored(`[` + letters + `]{2,}\b`)

// matchAt returns the length in runes of the match of re starting exactly at
// runes[pos], or 0 when there is none.
func matchAt(re *regexp2.Regexp, runes []rune, pos int) int {
	m, err := re.FindRunesMatchStartingAt(runes, pos)
	if err != nil || m == nil || m.Index != pos {
		return 0
	}
	return m.Length
}
