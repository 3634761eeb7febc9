package kelime

// ═══════════════════════════════════════════════════════════════════════════════
// STEMMER
// ═══════════════════════════════════════════════════════════════════════════════
// The suffix trie usually offers several nested suffixes for one token:
//
//	"evlerden" → candidates "den", "lerden"
//
// They are tried longest first. A candidate is accepted when what remains of
// the token (the residual stem) is still a plausible word: more than one
// letter, or the one-letter pronoun "o". Otherwise the next shorter
// candidate is tried, and a token with no acceptable candidate is left as
// it is.
//
// The replacement-aware variant appends the learned replacement before
// checking the residual, so "kitabı" is judged as "kitap" rather than "kita".
// ═══════════════════════════════════════════════════════════════════════════════

// singleLetterStem is the only one-letter residual stem accepted.
const singleLetterStem = "o"

// Stemmer strips learned suffixes from tokens. It is safe for concurrent
// use once built.
type Stemmer struct {
	lexicon *SuffixLexicon
}

// NewStemmer creates a stemmer over lex.
func NewStemmer(lex *SuffixLexicon) *Stemmer {
	if lex == nil {
		lex = NewSuffixLexicon()
	}
	return &Stemmer{lexicon: lex}
}

// Lexicon returns the suffix lexicon the stemmer uses.
func (s *Stemmer) Lexicon() *SuffixLexicon {
	return s.lexicon
}

// validStem reports whether a residual stem may stand on its own.
func validStem(stem string) bool {
	n := runeLen(stem)
	return n > 1 || (n == 1 && stem == singleLetterStem)
}

// DetectSuffix returns the longest suffix of token whose removal leaves a
// valid stem.
func (s *Stemmer) DetectSuffix(token string) (string, bool) {
	candidates := s.lexicon.Trie.Candidates(token)
	for i := len(candidates) - 1; i >= 0; i-- {
		suffix := candidates[i]
		if validStem(token[:len(token)-len(suffix)]) {
			return suffix, true
		}
	}
	return "", false
}

// DetectSuffixAndReplacement is DetectSuffix with the learned replacement
// appended to the residual stem before it is judged. replacement is empty
// when the accepted suffix has none.
func (s *Stemmer) DetectSuffixAndReplacement(token string) (suffix, replacement string, ok bool) {
	candidates := s.lexicon.Trie.Candidates(token)
	for i := len(candidates) - 1; i >= 0; i-- {
		cand := candidates[i]
		repl, _ := s.lexicon.Replacements.Lookup(cand)
		if validStem(token[:len(token)-len(cand)] + repl) {
			return cand, repl, true
		}
	}
	return "", "", false
}

// Stem removes the suffix found by DetectSuffix. Tokens without one are
// returned unchanged.
func (s *Stemmer) Stem(token string) string {
	suffix, ok := s.DetectSuffix(token)
	if !ok {
		return token
	}
	return token[:len(token)-len(suffix)]
}

// StemWithReplacement removes the suffix found by
// DetectSuffixAndReplacement and appends its replacement.
func (s *Stemmer) StemWithReplacement(token string) string {
	suffix, replacement, ok := s.DetectSuffixAndReplacement(token)
	if !ok {
		return token
	}
	return token[:len(token)-len(suffix)] + replacement
}
