package kelime

import (
	"unicode"
)

// ═══════════════════════════════════════════════════════════════════════════════
// RULE-BASED TOKENIZER
// ═══════════════════════════════════════════════════════════════════════════════
// A cursor moves over the text. At each position, after skipping whitespace,
// the tokenizer tries in this order:
//
//	 1. a multi-word expression from the MWE trie
//	 2. email      3. URL       4. date      5. time
//	 6. number     7. hashtag   8. word      9. end-of-sentence punctuation
//	10. one character as OTHER
//
// The first hit becomes a token and the cursor jumps past it. Step 10 always
// consumes something, so tokenizing any finite text terminates.
//
// EXAMPLE (with "el ele" in the MWE trie):
//
//	"el ele vermek, 10.05.2024!"
//	→ MWE "el ele", WORD "vermek", OTHER ",", DATE "10.05.2024",
//	  END_OF_SENTENCE_PUNCTUATION "!"
// ═══════════════════════════════════════════════════════════════════════════════

// Token is one unit of tokenized text.
type Token struct {
	ID       int      // position in the token sequence, from 0
	Text     string   // surface text as it appears in the input
	Category Category // what kind of text the token is
	Start    int      // byte offset of Text in the input
	End      int      // byte offset just past Text
}

// Tokenizer splits text into categorized tokens. It is safe for concurrent
// use.
type Tokenizer struct {
	mwe *MWETrie
}

// NewTokenizer creates a tokenizer that recognizes the expressions in mwe.
// A nil trie disables MWE detection.
func NewTokenizer(mwe *MWETrie) *Tokenizer {
	return &Tokenizer{mwe: mwe}
}

// Tokenize returns the tokens of text in scan order, with IDs 0..N-1.
func (t *Tokenizer) Tokenize(text string) []Token {
	runes, offsets := decodeRunes(text)

	var tokens []Token
	cursor := 0
	for {
		cursor = skipSpace(runes, cursor)
		if cursor >= len(runes) {
			break
		}

		category, n := t.match(runes, cursor)
		start, end := offsets[cursor], offsets[cursor+n]
		tokens = append(tokens, Token{
			ID:       len(tokens),
			Text:     text[start:end],
			Category: category,
			Start:    start,
			End:      end,
		})
		cursor += n
	}
	return tokens
}

// match classifies the text at cursor and returns the length of the match
// in runes, which is always at least one.
func (t *Tokenizer) match(runes []rune, cursor int) (Category, int) {
	if n := t.matchMWE(runes, cursor); n > 0 {
		return MWE, n
	}
	for _, p := range tokenPatterns {
		if n := matchAt(p.re, runes, cursor); n > 0 {
			return p.category, n
		}
	}
	return Other, 1
}

// matchMWE walks the MWE trie word by word from cursor and returns the
// length of the expression found, or 0.
//
// The walk keeps a frontier of trie nodes and extends it one word at a time.
// When the next word cannot extend any node (or there is no next word) the
// walk stops, and the text read so far is an expression only if a frontier
// node is end-marked. Earlier, shorter expressions are not revisited.
func (t *Tokenizer) matchMWE(runes []rune, cursor int) int {
	if t.mwe == nil || t.mwe.Len() == 0 {
		return 0
	}

	frontier := []*trieNode[string]{t.mwe.root}
	pos, matched := cursor, cursor
	for {
		pos = skipSpace(runes, pos)
		n := matchAt(letterSequence, runes, pos)
		if n == 0 {
			break
		}
		next := t.mwe.step(frontier, toLower(string(runes[pos:pos+n])))
		if len(next) == 0 {
			break
		}
		frontier = next
		pos += n
		matched = pos
	}

	if matched == cursor || !anyEnd(frontier) {
		return 0
	}
	return matched - cursor
}

// decodeRunes returns the runes of text together with the byte offset of
// each rune. offsets has one extra entry holding len(text).
func decodeRunes(text string) ([]rune, []int) {
	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return runes, offsets
}

func skipSpace(runes []rune, pos int) int {
	for pos < len(runes) && unicode.IsSpace(runes[pos]) {
		pos++
	}
	return pos
}
