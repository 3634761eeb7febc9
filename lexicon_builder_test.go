package kelime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SUFFIX DIFF TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestDiffSuffix(t *testing.T) {
	tests := []struct {
		surface, lemma      string
		suffix, replacement string
		ok                  bool
	}{
		{"evlerden", "ev", "lerden", "", true},
		{"kitabı", "kitap", "bı", "p", true},
		{"gideceğim", "git", "deceğim", "t", true},
		{"ağacı", "ağaç", "cı", "ç", true},
		{"ev", "ev", "", "", false},      // identical
		{"o", "onlar", "", "", false},    // lemma starts with the surface
		{"gel", "gelmek", "", "", false}, // lemma starts with the surface
	}
	for _, tt := range tests {
		t.Run(tt.surface+"/"+tt.lemma, func(t *testing.T) {
			suffix, replacement, ok := diffSuffix(tt.surface, tt.lemma)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.suffix, suffix)
			assert.Equal(t, tt.replacement, replacement)
		})
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// SUFFIX LEXICON BUILD TESTS
// ═══════════════════════════════════════════════════════════════════════════════

const suffixCorpus = `# sent_id = 1
# text = Evlerden kitabı aldılar.
1 | Evlerden | ev | NOUN | _ | _ | 3 | obl | _ | _
2 | kitabı | kitap | NOUN | _ | _ | 3 | obj | _ | _
3 | aldılar | al | VERB | _ | _ | 0 | root | _ | _
4 | . | . | PUNCT | _ | _ | 3 | punct | _ | _

# sent_id = 2
1 | O | o | PRON | _ | _ | 2 | nsubj | _ | _
2 | 1990'da | 1990 | NUM | _ | _ | 3 | obl | _ | _
3 | Okula | okul | NOUN | _ | _ | 4 | obl | _ | _
4-5 | gelmişti | _ | _ | _ | _ | _ | _ | _ | _
4 | gelmiş | gel | VERB | _ | _ | 0 | root | _ | _
5 | ti | i | AUX | _ | _ | 4 | cop | _ | _
`

func buildConfig() BuildConfig {
	cfg := DefaultBuildConfig()
	cfg.Concurrency = 2
	return cfg
}

func TestBuildSuffixLexicon(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "tr.conllu", suffixCorpus)

	lex, err := BuildSuffixLexicon(context.Background(), []string{path}, buildConfig())
	require.NoError(t, err)

	for _, s := range []string{"lerden", "bı", "dılar", "a", "mişti"} {
		assert.True(t, lex.Trie.Contains(s), "missing suffix %q", s)
	}
	// identical pairs and non-alphabetic forms contribute nothing
	assert.Equal(t, 5, lex.Trie.Len())

	r, ok := lex.Replacements.Lookup("bı")
	require.True(t, ok)
	assert.Equal(t, "p", r)
	assert.Equal(t, 1, lex.Replacements.Len())
}

func TestBuildSuffixLexicon_MultiRowGroups(t *testing.T) {
	corpus := `1-2 | gelmişti | _ | _ | _ | _ | _ | _ | _ | _
1 | gelmiş | gel | VERB | _ | _ | 0 | root | _ | _
2 | ti | i | NOUN | _ | _ | 1 | cop | _ | _

1-2 | gelmişti | _ | _ | _ | _ | _ | _ | _ | _
1 | gelmiş | gel | VERB | _ | _ | 0 | root | _ | _
2 | di | i | AUX | _ | _ | 1 | cop | _ | _

1-2 | yazmıştı | _ | _ | _ | _ | _ | _ | _ | _
1 | yazmış | yaz | VERB | _ | _ | 0 | root | _ | _

1-2 | okumuştu | _ | _ | _ | _ | _ | _ | _ | _
1 | okumuş | oku | VERB | _ | _ | 0 | root | _ | _
2 | tu | i | PART | _ | _ | 1 | cop | _ | _
`
	path := writeCorpus(t, t.TempDir(), "groups.conllu", corpus)

	core, logs := observer.New(zap.DebugLevel)
	cfg := buildConfig()
	cfg.Logger = zap.New(core)

	lex, err := BuildSuffixLexicon(context.Background(), []string{path}, cfg)
	require.NoError(t, err)

	// wrong final tag, rebuilt surface mismatch and cut group are discarded
	assert.False(t, lex.Trie.Contains("mişti"))
	assert.False(t, lex.Trie.Contains("mıştı"))
	assert.True(t, lex.Trie.Contains("muştu"))
	assert.Equal(t, 1, lex.Trie.Len())

	assert.Equal(t, 1, logs.FilterMessage("multi-row token cut by sentence boundary").Len())
	read := logs.FilterMessage("read suffix corpus").All()
	require.Len(t, read, 1)
	assert.EqualValues(t, 3, read[0].ContextMap()["discarded_groups"])
}

const brokenRangeCorpus = `1-2 | gelmişti | _ | _ | _ | _ | _ | _ | _ | _
1 | gelmiş | gel | VERB | _ | _ | 0 | root | _ | _
4 | ti | i | AUX | _ | _ | 1 | cop | _ | _
`

func TestBuildSuffixLexicon_RangeErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	good := writeCorpus(t, dir, "good.conllu", suffixCorpus)
	bad := writeCorpus(t, dir, "bad.conllu", brokenRangeCorpus)

	_, err := BuildSuffixLexicon(context.Background(), []string{good, bad}, buildConfig())
	assert.ErrorIs(t, err, ErrMultiRowRange)
	assert.Contains(t, err.Error(), "bad.conllu:3")
}

func TestBuildSuffixLexicon_SkipMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeCorpus(t, dir, "good.conllu", suffixCorpus)
	bad := writeCorpus(t, dir, "bad.conllu", brokenRangeCorpus)

	core, logs := observer.New(zap.WarnLevel)
	cfg := buildConfig()
	cfg.Logger = zap.New(core)
	cfg.SkipMalformedFiles = true

	lex, err := BuildSuffixLexicon(context.Background(), []string{good, bad}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, lex.Trie.Len())
	assert.Equal(t, 1, logs.FilterMessage("dropping malformed corpus file").Len())
}

func TestBuildSuffixLexicon_Errors(t *testing.T) {
	_, err := BuildSuffixLexicon(context.Background(), nil, buildConfig())
	assert.ErrorIs(t, err, ErrNoCorpora)

	dir := t.TempDir()
	_, err = BuildSuffixLexicon(context.Background(),
		[]string{filepath.Join(dir, "a.conllu"), filepath.Join(dir, "b.conllu")}, buildConfig())
	assert.ErrorIs(t, err, os.ErrNotExist)

	// missing files are never skipped
	cfg := buildConfig()
	cfg.SkipMalformedFiles = true
	_, err = BuildSuffixLexicon(context.Background(), []string{filepath.Join(dir, "a.conllu")}, cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildSuffixLexicon_Canceled(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "tr.conllu", suffixCorpus)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildSuffixLexicon(ctx, []string{path}, buildConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSuffixLexicon_DeterministicAcrossConcurrency(t *testing.T) {
	dir := t.TempDir()
	// the first two files annotate "ağacı" differently, one vote each for
	// the replacement of "cı"; the file listed first wins the tie
	paths := []string{
		writeCorpus(t, dir, "1.conllu", "1 | ağacı | ağaç | NOUN | _ | _ | 0 | root | _ | _\n"),
		writeCorpus(t, dir, "2.conllu", "1 | ağacı | ağat | NOUN | _ | _ | 0 | root | _ | _\n"),
		writeCorpus(t, dir, "3.conllu", "1 | yurdu | yurt | NOUN | _ | _ | 0 | root | _ | _\n"),
		writeCorpus(t, dir, "4.conllu", "1 | gazeteci | gazete | NOUN | _ | _ | 0 | root | _ | _\n"),
		writeCorpus(t, dir, "5.conllu", suffixCorpus),
	}

	var blobs [][]byte
	for _, n := range []int{1, 3, 8} {
		cfg := DefaultBuildConfig()
		cfg.Concurrency = n
		lex, err := BuildSuffixLexicon(context.Background(), paths, cfg)
		require.NoError(t, err)

		r, _ := lex.Replacements.Lookup("cı")
		assert.Equal(t, "ç", r)

		blob, err := lex.Encode()
		require.NoError(t, err)
		blobs = append(blobs, blob)
	}
	assert.Equal(t, blobs[0], blobs[1])
	assert.Equal(t, blobs[0], blobs[2])
}
