package kelime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SENTENCE SPLITTER
// ═══════════════════════════════════════════════════════════════════════════════
// A single pass over whitespace-separated words:
//
//   - A word ending in '?' or '!' ends the sentence.
//   - A word ending in '.' ends it too, unless the word is an abbreviation
//     ("Dr.", "vb.").
//   - Inside a quotation or parentheses nothing ends the sentence. When the
//     closing word arrives, the sentence ends there only if the next word
//     starts with an uppercase letter.
//
// The two suspended states never overlap: while inside one, the opening
// character of the other is not looked at.
// ═══════════════════════════════════════════════════════════════════════════════

type splitState int

const (
	outside splitState = iota
	inQuotation
	inParentheses
)

// SentenceSplitter splits text into sentences. It is safe for concurrent use.
type SentenceSplitter struct {
	abbreviations map[string]struct{}
}

// NewSentenceSplitter creates a splitter that does not end sentences at the
// given abbreviations.
func NewSentenceSplitter(abbreviations []string) *SentenceSplitter {
	s := &SentenceSplitter{abbreviations: make(map[string]struct{}, len(abbreviations))}
	for _, a := range abbreviations {
		s.abbreviations[a] = struct{}{}
	}
	return s
}

func isQuoteOpen(r rune) bool  { return r == '"' || r == '“' }
func isQuoteClose(r rune) bool { return r == '"' || r == '”' }

// Split returns the sentences of text, each one its words joined by single
// spaces. Words after the last sentence end form a final sentence.
func (s *SentenceSplitter) Split(text string) []string {
	words := strings.Fields(text)

	var (
		sentences []string
		current   []string
		state     = outside
	)
	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, strings.Join(current, " "))
			current = current[:0]
		}
	}
	nextStartsUpper := func(i int) bool {
		if i+1 >= len(words) {
			return false
		}
		r, _ := utf8.DecodeRuneInString(words[i+1])
		return unicode.IsUpper(r)
	}

	for i, word := range words {
		current = append(current, word)
		first, _ := utf8.DecodeRuneInString(word)
		last, _ := utf8.DecodeLastRuneInString(word)

		switch state {
		case inQuotation:
			if isQuoteClose(last) {
				state = outside
				if nextStartsUpper(i) {
					flush()
				}
			}
		case inParentheses:
			if last == ')' {
				state = outside
				if nextStartsUpper(i) {
					flush()
				}
			}
		default:
			if isQuoteOpen(first) && !isQuoteClose(last) {
				state = inQuotation
				continue
			}
			if first == '(' && last != ')' {
				state = inParentheses
				continue
			}
			switch {
			case last == '.':
				if _, ok := s.abbreviations[word]; !ok {
					flush()
				}
			case last == '?' || last == '!':
				flush()
			}
		}
	}
	flush()
	return sentences
}

// LoadAbbreviations reads an abbreviation list. YAML files (.yaml, .yml)
// hold either a plain list or a list under an "abbreviations" key; any other
// file is read as whitespace-separated words.
func LoadAbbreviations(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var list []string
		if err := yaml.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var doc struct {
			Abbreviations []string `yaml:"abbreviations"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse abbreviations %s: %w", path, err)
		}
		return doc.Abbreviations, nil
	default:
		return strings.Fields(string(data)), nil
	}
}
