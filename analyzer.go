// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Analysis turns raw Turkish text into the terms a concordance is keyed by.
//
// ANALYSIS PIPELINE:
// ------------------
//  1. Tokenization   → categorized tokens (WORD, MWE, DATE, ...)
//  2. Filtering      → punctuation and OTHER tokens are dropped
//  3. Lowercasing    → Turkish rules ("İSTANBUL" → "istanbul", "IRMAK" → "ırmak")
//  4. Stemming       → learned suffixes are stripped from WORD tokens
//
// EXAMPLE TRANSFORMATION:
// -----------------------
// Input:  "Çocuklar Ankara'da el ele verdi."
// Step 1: [Çocuklar/WORD, Ankara'da/WORD, el ele/MWE, verdi/WORD, ./EOS]
// Step 2: [Çocuklar, Ankara'da, el ele, verdi]
// Step 3: [çocuklar, ankara'da, el ele, verdi]
// Step 4: [çocuk, ankara, el ele, ver]
//
// Proper nouns carry their inflection after an apostrophe, so the part before
// it is the stem and no lexicon lookup is needed. MWE tokens are kept whole.
// ═══════════════════════════════════════════════════════════════════════════════

package kelime

import (
	"strings"
	"unicode/utf8"
)

// AnalyzerConfig holds configuration options for text analysis.
type AnalyzerConfig struct {
	EnableStemming  bool // Strip learned suffixes from words (default: true)
	UseReplacements bool // Restore learned stem endings, "kitabı" → "kitap" (default: true)
}

// DefaultAnalyzerConfig returns the standard analyzer configuration.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		EnableStemming:  true,
		UseReplacements: true,
	}
}

// Term is one analyzed token.
type Term struct {
	Token       Token  // the token the term came from
	Text        string // normalized form, the key used for lookups
	Suffix      string // suffix removed from the token, if any
	Replacement string // ending appended to the stem, if any
}

// Analyzer runs the analysis pipeline. It is safe for concurrent use.
type Analyzer struct {
	tokenizer *Tokenizer
	stemmer   *Stemmer
	config    AnalyzerConfig
}

// NewAnalyzer creates an analyzer. A nil tokenizer tokenizes without MWE
// detection, and a nil stemmer disables stemming.
func NewAnalyzer(tok *Tokenizer, stem *Stemmer, config AnalyzerConfig) *Analyzer {
	if tok == nil {
		tok = NewTokenizer(nil)
	}
	return &Analyzer{tokenizer: tok, stemmer: stem, config: config}
}

// Analyze returns the terms of text in order.
//
// Example:
//
//	terms := analyzer.Analyze("Evlerden çıktılar!")
//	// terms[0].Text == "ev", terms[0].Suffix == "lerden"
func (a *Analyzer) Analyze(text string) []Term {
	tokens := a.tokenizer.Tokenize(text)
	terms := make([]Term, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Category {
		case Other, EndOfSentencePunctuation:
			continue
		case Word:
			terms = append(terms, a.analyzeWord(tok))
		case MWE:
			words := strings.Fields(toLower(tok.Text))
			terms = append(terms, Term{Token: tok, Text: strings.Join(words, " ")})
		default:
			terms = append(terms, Term{Token: tok, Text: toLower(tok.Text)})
		}
	}
	return terms
}

// analyzeWord lowercases and stems a WORD token.
func (a *Analyzer) analyzeWord(tok Token) Term {
	lower := toLower(tok.Text)
	if i := strings.IndexAny(lower, "'’"); i >= 0 {
		_, size := utf8.DecodeRuneInString(lower[i:])
		return Term{Token: tok, Text: lower[:i], Suffix: lower[i+size:]}
	}

	term := Term{Token: tok, Text: lower}
	if !a.config.EnableStemming || a.stemmer == nil || !isAlpha(lower) {
		return term
	}

	if a.config.UseReplacements {
		suffix, replacement, ok := a.stemmer.DetectSuffixAndReplacement(lower)
		if ok {
			term.Text = lower[:len(lower)-len(suffix)] + replacement
			term.Suffix, term.Replacement = suffix, replacement
		}
		return term
	}
	if suffix, ok := a.stemmer.DetectSuffix(lower); ok {
		term.Text = lower[:len(lower)-len(suffix)]
		term.Suffix = suffix
	}
	return term
}

// Texts returns the Text of each term.
func Texts(terms []Term) []string {
	r := make([]string, len(terms))
	for i, t := range terms {
		r[i] = t.Text
	}
	return r
}
