package kelime

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SUFFIX LEXICON CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════
// Every (surface, lemma) pair of a dependency-annotated corpus tells us which
// tail of the surface form is a suffix:
//
//	evlerden / ev  → suffix "lerden", no replacement
//	kitabı / kitap → suffix "bı",     replacement "p"
//	ev / ev        → nothing (the lemma starts with the surface)
//
// Multi-row tokens are glued back together first. "gelmişti" is annotated as
// "gelmiş" + "ti"; the pair (gelmişti, gel) is used only when the pieces
// rebuild the declared surface exactly and the last piece is an auxiliary or
// a particle.
// ═══════════════════════════════════════════════════════════════════════════════

// SuffixLexicon is everything the stemmer needs: the suffixes and the
// replacements learned for them.
type SuffixLexicon struct {
	Trie         *SuffixTrie
	Replacements *ReplacementLexicon
}

// NewSuffixLexicon creates an empty suffix lexicon.
func NewSuffixLexicon() *SuffixLexicon {
	return &SuffixLexicon{
		Trie:         NewSuffixTrie(),
		Replacements: NewReplacementLexicon(),
	}
}

// multiRowFinalTags are the UPOS tags allowed on the last constituent of a
// multi-row token that is merged into one surface form.
var multiRowFinalTags = map[string]struct{}{
	"aux":  {},
	"part": {},
}

// diffSuffix compares a lowercased surface form with its lemma and returns
// the suffix and the replacement that restores the lemma. ok is false when
// the lemma starts with the surface form, identical pairs included.
func diffSuffix(surface, lemma string) (suffix, replacement string, ok bool) {
	if strings.HasPrefix(lemma, surface) {
		return "", "", false
	}
	s, l := []rune(surface), []rune(lemma)
	for i := range l {
		if i >= len(s) {
			return "", "", false
		}
		if s[i] != l[i] {
			return string(s[i:]), string(l[i:]), true
		}
	}
	return string(s[len(l):]), "", true
}

// suffixFile is what one corpus file contributes to a suffix lexicon.
type suffixFile struct {
	suffixes  []string // in observation order, duplicates kept
	tally     *replacementTally
	pairs     int
	discarded int // multi-row groups that did not rebuild
}

func (f *suffixFile) add(surface, lemma string) {
	suffix, replacement, ok := diffSuffix(toLower(surface), toLower(lemma))
	if !ok {
		return
	}
	f.pairs++
	f.suffixes = append(f.suffixes, suffix)
	f.tally.observe(suffix, replacement)
}

// BuildSuffixLexicon reads the CoNLL-U files at paths and learns the suffix
// trie and replacement lexicon from them.
//
// Files are parsed concurrently but merged in the order given, so the
// replacement chosen on a frequency tie is the same as if the files were
// read one after another.
func BuildSuffixLexicon(ctx context.Context, paths []string, cfg BuildConfig) (*SuffixLexicon, error) {
	log := cfg.logger()
	log.Info("building suffix lexicon", zap.Strings("paths", paths))

	files, err := extractAll(ctx, paths, cfg, func(ctx context.Context, path string) (suffixFile, error) {
		return extractSuffixes(ctx, path, log)
	})
	if err != nil {
		return nil, err
	}

	lex := NewSuffixLexicon()
	tally := newReplacementTally()
	for _, f := range files {
		if f == nil {
			continue
		}
		for _, suffix := range f.suffixes {
			lex.Trie.Insert(suffix)
		}
		tally.merge(f.tally)
	}
	lex.Replacements = tally.compile()

	log.Info("suffix lexicon built",
		zap.Int("suffixes", lex.Trie.Len()),
		zap.Int("replacements", lex.Replacements.Len()))
	return lex, nil
}

// extractSuffixes collects the suffix observations of one CoNLL-U file.
func extractSuffixes(ctx context.Context, path string, log *zap.Logger) (suffixFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return suffixFile{}, err
	}
	defer f.Close()

	out := suffixFile{tally: newReplacementTally()}
	var group multiRow

	err = readCorpus(ctx, f, conlluColumns, func(row conlluRow, boundary bool) error {
		if boundary {
			if group.open {
				log.Debug("multi-row token cut by sentence boundary",
					zap.String("path", path), zap.Int("line", row.line), zap.String("surface", group.surface))
				out.discarded++
				group.reset()
			}
			return nil
		}

		if group.open {
			if err := group.check(path, row); err != nil {
				return err
			}
			if row.start == group.start {
				group.lemma = row.lemma
			}
			group.built.WriteString(row.form)
			if row.start != group.end {
				return nil
			}
			_, tagOK := multiRowFinalTags[strings.ToLower(row.upos)]
			if tagOK && group.built.String() == group.surface {
				out.add(group.surface, group.lemma)
			} else {
				out.discarded++
			}
			group.reset()
			return nil
		}

		if !isAlpha(row.form) {
			return nil
		}
		if row.isRange() {
			group.begin(row)
			return nil
		}
		if row.form != row.lemma {
			out.add(row.form, row.lemma)
		}
		return nil
	})
	if err != nil {
		return suffixFile{}, err
	}

	log.Info("read suffix corpus",
		zap.String("path", path),
		zap.Int("pairs", out.pairs),
		zap.Int("discarded_groups", out.discarded))
	return out, nil
}
