package kelime

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ═══════════════════════════════════════════════════════════════════════════════
// MWE LEXICON CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════
// A PARSEME .cupt sentence marks the members of each expression with a small
// group id in the last column:
//
//	1	el	el	NOUN	...	1:VID
//	2	ele	el	NOUN	...	1
//	3	verdiler	ver	VERB	...	1
//
// gives the expression ["el", "el", "ver"]. A word may belong to several
// expressions at once ("1;2:LVC"). Auxiliaries and punctuation are never
// part of a stored expression.
// ═══════════════════════════════════════════════════════════════════════════════

// mweSkippedTags are UPOS tags whose words are left out of expressions.
var mweSkippedTags = map[string]struct{}{
	"aux":   {},
	"punct": {},
}

// sentenceMWEs accumulates the expressions of the sentence being read.
type sentenceMWEs struct {
	order  []string            // group ids in first-seen order
	groups map[string][]string // group id → lemmas
}

func newSentenceMWEs() *sentenceMWEs {
	return &sentenceMWEs{groups: make(map[string][]string)}
}

func (s *sentenceMWEs) add(groupID, lemma string) {
	if _, ok := s.groups[groupID]; !ok {
		s.order = append(s.order, groupID)
	}
	s.groups[groupID] = append(s.groups[groupID], lemma)
}

// flush returns the collected expressions and clears the accumulator.
func (s *sentenceMWEs) flush() [][]string {
	if len(s.order) == 0 {
		return nil
	}
	out := make([][]string, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.groups[id])
	}
	s.order = nil
	s.groups = make(map[string][]string)
	return out
}

// mweGroupIDs parses the MWE column into group ids. It returns nil for words
// that are not part of any expression.
func mweGroupIDs(column string) []string {
	if column == "" || column == "*" || column == "_" {
		return nil
	}
	parts := strings.Split(column, ";")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		id, _, _ := strings.Cut(part, ":")
		ids = append(ids, id)
	}
	return ids
}

// BuildMWELexicon reads the .cupt files at paths and returns the trie of every
// annotated multi-word expression.
func BuildMWELexicon(ctx context.Context, paths []string, cfg BuildConfig) (*MWETrie, error) {
	log := cfg.logger()
	log.Info("building MWE lexicon", zap.Strings("paths", paths))

	files, err := extractAll(ctx, paths, cfg, func(ctx context.Context, path string) ([][]string, error) {
		return extractMWEs(ctx, path, log)
	})
	if err != nil {
		return nil, err
	}

	trie := NewMWETrie()
	for _, f := range files {
		if f == nil {
			continue
		}
		for _, mwe := range *f {
			trie.Insert(mwe)
		}
	}

	log.Info("MWE lexicon built", zap.Int("expressions", trie.Len()))
	return trie, nil
}

// extractMWEs returns the expressions of one .cupt file in reading order.
func extractMWEs(ctx context.Context, path string, log *zap.Logger) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mwes [][]string
	sentence := newSentenceMWEs()

	err = readCorpus(ctx, f, cuptColumns, func(row conlluRow, boundary bool) error {
		if boundary {
			mwes = append(mwes, sentence.flush()...)
			return nil
		}
		if row.isRange() {
			return nil
		}
		if _, skip := mweSkippedTags[strings.ToLower(row.upos)]; skip {
			return nil
		}
		ids := mweGroupIDs(row.mwe)
		if len(ids) == 0 {
			return nil
		}
		lemma := toLower(row.lemma)
		for _, id := range ids {
			sentence.add(id, lemma)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("read MWE corpus", zap.String("path", path), zap.Int("expressions", len(mwes)))
	return mwes, nil
}
