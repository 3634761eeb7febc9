package kelime

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ROUND TRIPS
// ═══════════════════════════════════════════════════════════════════════════════

func TestSuffixLexicon_EncodeDecode(t *testing.T) {
	lex := newTestLexicon(
		[]string{"den", "lerden", "ler", "ğı", "bı", "iyeceğim"},
		map[string]string{"bı": "p", "ğı": "k", "iyeceğim": "e"},
	)

	data, err := lex.Encode()
	require.NoError(t, err)

	decoded := NewSuffixLexicon()
	require.NoError(t, decoded.Decode(data))

	assert.Equal(t, lex.Trie.Len(), decoded.Trie.Len())
	for _, s := range []string{"den", "lerden", "ler", "ğı", "bı", "iyeceğim"} {
		assert.True(t, decoded.Trie.Contains(s), s)
	}
	assert.False(t, decoded.Trie.Contains("erden"))
	assert.Equal(t, 3, decoded.Replacements.Len())
	r, ok := decoded.Replacements.Lookup("ğı")
	assert.True(t, ok)
	assert.Equal(t, "k", r)

	// same lexicon, same bytes
	again, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	assert.Equal(t, "kitap", NewStemmer(decoded).StemWithReplacement("kitabı"))
}

func TestMWETrie_EncodeDecode(t *testing.T) {
	trie := newMWETrie("el el ver", "el at", "karar ver", "göz at")

	data, err := trie.Encode()
	require.NoError(t, err)

	decoded := NewMWETrie()
	require.NoError(t, decoded.Decode(data))

	assert.Equal(t, 4, decoded.Len())
	assert.True(t, decoded.Contains([]string{"el", "el", "ver"}))
	assert.True(t, decoded.Contains([]string{"göz", "at"}))
	assert.False(t, decoded.Contains([]string{"el", "el"}))
	assert.Equal(t, trie.String(), decoded.String())
}

func TestEmptyLexicons_EncodeDecode(t *testing.T) {
	data, err := NewSuffixLexicon().Encode()
	require.NoError(t, err)
	lex := NewSuffixLexicon()
	require.NoError(t, lex.Decode(data))
	assert.Zero(t, lex.Trie.Len())

	data, err = NewMWETrie().Encode()
	require.NoError(t, err)
	trie := NewMWETrie()
	require.NoError(t, trie.Decode(data))
	assert.Zero(t, trie.Len())
}

func TestConcordance_EncodeDecode(t *testing.T) {
	c := setupTestConcordance()

	data, err := c.Encode()
	require.NoError(t, err)

	decoded := NewConcordance(testAnalyzer())
	decoded.Index(42, "silinecek")
	require.NoError(t, decoded.Decode(data))

	assert.Equal(t, c.Len(), decoded.Len())
	assert.Equal(t, c.Terms(), decoded.Terms())
	assert.True(t, decoded.Lookup("silinecek").IsEmpty())
	assert.Equal(t, []int{1, 3}, bitmapToSlice(decoded.Lookup("kediler")))
	assert.Equal(t, []int{4}, bitmapToSlice(decoded.Category(Date)))

	results := NewQueryBuilder(decoded).Term("bahçe").And().Not().Term("kedi").Execute()
	assert.Equal(t, []int{2}, bitmapToSlice(results))
}

// ═══════════════════════════════════════════════════════════════════════════════
// CORRUPT AND UNSUPPORTED DATA
// ═══════════════════════════════════════════════════════════════════════════════

// reseal recomputes the checksum of a blob edited in place.
func reseal(data []byte) []byte {
	body := data[:len(data)-checksumSize]
	binary.LittleEndian.PutUint64(data[len(body):], xxhash.Sum64(body))
	return data
}

func encodedSuffixLexicon(t *testing.T) []byte {
	t.Helper()
	data, err := newTestLexicon([]string{"den", "lerden"}, map[string]string{"bı": "p"}).Encode()
	require.NoError(t, err)
	return data
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name   string
		mangle func([]byte) []byte
	}{
		{"flipped body byte", func(b []byte) []byte { b[headerSize+2] ^= 0xff; return b }},
		{"flipped checksum", func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }},
		{"truncated", func(b []byte) []byte { return b[:len(b)-3] }},
		{"too short", func(b []byte) []byte { return b[:headerSize] }},
		{"empty", func([]byte) []byte { return nil }},
		{"truncated body", func(b []byte) []byte {
			cut := append([]byte(nil), b[:len(b)-checksumSize-4]...)
			return reseal(append(cut, make([]byte, checksumSize)...))
		}},
		{"trailing bytes", func(b []byte) []byte {
			body := append([]byte(nil), b[:len(b)-checksumSize]...)
			return reseal(append(body, 0, 0, 0, 0, 0, 0, 0, 0, 0))
		}},
		{"huge child count", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[headerSize+1:], 1<<30)
			return reseal(b)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSuffixLexicon().Decode(tt.mangle(encodedSuffixLexicon(t)))
			assert.ErrorIs(t, err, ErrCorruptLexicon)
		})
	}
}

func TestDecode_Unsupported(t *testing.T) {
	tests := []struct {
		name   string
		mangle func([]byte) []byte
	}{
		{"magic", func(b []byte) []byte { copy(b, "BLZX"); return reseal(b) }},
		{"version", func(b []byte) []byte {
			binary.LittleEndian.PutUint16(b[len(lexiconMagic):], lexiconVersion+1)
			return reseal(b)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSuffixLexicon().Decode(tt.mangle(encodedSuffixLexicon(t)))
			assert.ErrorIs(t, err, ErrUnsupportedLexicon)
		})
	}

	// a suffix lexicon is not an MWE lexicon, nor the other way around
	err := NewMWETrie().Decode(encodedSuffixLexicon(t))
	assert.ErrorIs(t, err, ErrUnsupportedLexicon)

	data, err := NewMWETrie().Encode()
	require.NoError(t, err)
	assert.ErrorIs(t, NewSuffixLexicon().Decode(data), ErrUnsupportedLexicon)
	assert.ErrorIs(t, NewConcordance(nil).Decode(data), ErrUnsupportedLexicon)
}

func TestDecode_FailureLeavesReceiver(t *testing.T) {
	lex := newTestLexicon([]string{"ler"}, nil)
	require.Error(t, lex.Decode([]byte("garbage")))
	assert.True(t, lex.Trie.Contains("ler"))
}

// ═══════════════════════════════════════════════════════════════════════════════
// FILES
// ═══════════════════════════════════════════════════════════════════════════════

func TestLexiconFiles(t *testing.T) {
	dir := t.TempDir()

	suffixPath := filepath.Join(dir, "suffix.klm")
	require.NoError(t, WriteLexiconFile(suffixPath, newTestLexicon([]string{"lerden"}, nil)))
	lex, err := ReadSuffixLexiconFile(suffixPath)
	require.NoError(t, err)
	assert.True(t, lex.Trie.Contains("lerden"))

	mwePath := filepath.Join(dir, "mwe.klm")
	require.NoError(t, WriteLexiconFile(mwePath, newMWETrie("el el ver")))
	trie, err := ReadMWELexiconFile(mwePath)
	require.NoError(t, err)
	assert.True(t, trie.Contains([]string{"el", "el", "ver"}))

	// wrong kind of file
	_, err = ReadSuffixLexiconFile(mwePath)
	assert.ErrorIs(t, err, ErrUnsupportedLexicon)
	assert.Contains(t, err.Error(), "mwe.klm")

	_, err = ReadMWELexiconFile(filepath.Join(dir, "missing.klm"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
