package kelime

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SERIALIZATION: Saving and Loading Lexicons
// ═══════════════════════════════════════════════════════════════════════════════
// Building a lexicon reads whole treebanks; using one should not. The tries,
// the replacement table and the concordance are written once to a compact
// binary blob and read back at query time.
//
// FORMAT STRUCTURE:
// -----------------
//
//	[magic "KLMX"][version: uint16][kind: uint8]
//	[body ...]
//	[checksum: uint64]   ← xxhash64 of everything before it
//
// All integers are little endian. Strings are [length: uint32][bytes].
//
// A trie node is written depth first:
//
//	[end: uint8][child count: uint32]
//	  for each child, keys ascending: [key][child node]
//
// Suffix trie keys are runes written as uint32, MWE trie keys are strings.
// Children are sorted so the same lexicon always encodes to the same bytes.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	lexiconMagic   = "KLMX"
	lexiconVersion = uint16(1)
	headerSize     = len(lexiconMagic) + 2 + 1
	checksumSize   = 8
)

type lexiconKind uint8

const (
	kindSuffix lexiconKind = iota + 1
	kindMWE
	kindConcordance
)

var (
	ErrCorruptLexicon     = errors.New("corrupt lexicon data")
	ErrUnsupportedLexicon = errors.New("unsupported lexicon format")
)

// ═══════════════════════════════════════════════════════════════════════════════
// ENCODING
// ═══════════════════════════════════════════════════════════════════════════════

// lexiconEncoder accumulates one serialized blob.
type lexiconEncoder struct {
	buffer *bytes.Buffer
}

func newLexiconEncoder(kind lexiconKind) (*lexiconEncoder, error) {
	e := &lexiconEncoder{buffer: new(bytes.Buffer)}
	e.buffer.WriteString(lexiconMagic)
	if err := binary.Write(e.buffer, binary.LittleEndian, lexiconVersion); err != nil {
		return nil, err
	}
	if err := e.writeUint8(uint8(kind)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *lexiconEncoder) writeUint8(v uint8) error {
	return e.buffer.WriteByte(v)
}

func (e *lexiconEncoder) writeUint32(v uint32) error {
	return binary.Write(e.buffer, binary.LittleEndian, v)
}

// writeBytes writes [length: uint32][data].
func (e *lexiconEncoder) writeBytes(data []byte) error {
	if err := e.writeUint32(uint32(len(data))); err != nil {
		return err
	}
	_, err := e.buffer.Write(data)
	return err
}

func (e *lexiconEncoder) writeString(s string) error {
	return e.writeBytes([]byte(s))
}

func (e *lexiconEncoder) writeRune(r rune) error {
	return e.writeUint32(uint32(r))
}

// finish appends the checksum and returns the blob.
func (e *lexiconEncoder) finish() ([]byte, error) {
	sum := xxhash.Sum64(e.buffer.Bytes())
	if err := binary.Write(e.buffer, binary.LittleEndian, sum); err != nil {
		return nil, err
	}
	return e.buffer.Bytes(), nil
}

// encodeNode writes node and everything under it.
func encodeNode[K rune | string](e *lexiconEncoder, node *trieNode[K], writeKey func(K) error) error {
	var end uint8
	if node.end {
		end = 1
	}
	if err := e.writeUint8(end); err != nil {
		return err
	}
	if err := e.writeUint32(uint32(len(node.children))); err != nil {
		return err
	}
	for _, key := range sortedKeys(node.children) {
		if err := writeKey(key); err != nil {
			return err
		}
		if err := encodeNode(e, node.children[key], writeKey); err != nil {
			return err
		}
	}
	return nil
}

// Encode serializes the suffix trie followed by the replacement table:
//
//	[trie root node]
//	[replacement count: uint32]
//	  for each suffix, ascending: [suffix: string][replacement: string]
func (l *SuffixLexicon) Encode() ([]byte, error) {
	e, err := newLexiconEncoder(kindSuffix)
	if err != nil {
		return nil, err
	}
	if err := encodeNode(e, l.Trie.root, e.writeRune); err != nil {
		return nil, err
	}

	replacements := l.Replacements.replacements
	if err := e.writeUint32(uint32(len(replacements))); err != nil {
		return nil, err
	}
	for _, suffix := range sortedKeys(replacements) {
		if err := e.writeString(suffix); err != nil {
			return nil, err
		}
		if err := e.writeString(replacements[suffix]); err != nil {
			return nil, err
		}
	}
	return e.finish()
}

// Encode serializes the MWE trie.
func (t *MWETrie) Encode() ([]byte, error) {
	e, err := newLexiconEncoder(kindMWE)
	if err != nil {
		return nil, err
	}
	if err := encodeNode(e, t.root, e.writeString); err != nil {
		return nil, err
	}
	return e.finish()
}

// ═══════════════════════════════════════════════════════════════════════════════
// DECODING
// ═══════════════════════════════════════════════════════════════════════════════

// lexiconDecoder reads a blob whose checksum and header were verified.
type lexiconDecoder struct {
	data   []byte
	offset int
}

// openLexicon checks the checksum and header of data and returns a decoder
// positioned at the start of the body.
func openLexicon(data []byte, kind lexiconKind) (*lexiconDecoder, error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrCorruptLexicon, len(data))
	}
	body := data[:len(data)-checksumSize]
	want := binary.LittleEndian.Uint64(data[len(body):])
	if got := xxhash.Sum64(body); got != want {
		return nil, fmt.Errorf("%w: checksum %016x, want %016x", ErrCorruptLexicon, got, want)
	}

	if string(body[:len(lexiconMagic)]) != lexiconMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrUnsupportedLexicon, body[:len(lexiconMagic)])
	}
	version := binary.LittleEndian.Uint16(body[len(lexiconMagic):])
	if version != lexiconVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedLexicon, version)
	}
	if got := lexiconKind(body[headerSize-1]); got != kind {
		return nil, fmt.Errorf("%w: kind %d, want %d", ErrUnsupportedLexicon, got, kind)
	}
	return &lexiconDecoder{data: body, offset: headerSize}, nil
}

func (d *lexiconDecoder) isComplete() bool {
	return d.offset == len(d.data)
}

func (d *lexiconDecoder) need(n int) error {
	if n < 0 || len(d.data)-d.offset < n {
		return fmt.Errorf("%w: truncated at offset %d", ErrCorruptLexicon, d.offset)
	}
	return nil
}

func (d *lexiconDecoder) readUint8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.data[d.offset]
	d.offset++
	return v, nil
}

func (d *lexiconDecoder) readUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.data[d.offset:])
	d.offset += 4
	return v, nil
}

func (d *lexiconDecoder) readBytes() ([]byte, error) {
	n, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if err := d.need(int(n)); err != nil {
		return nil, err
	}
	b := d.data[d.offset : d.offset+int(n)]
	d.offset += int(n)
	return b, nil
}

func (d *lexiconDecoder) readString() (string, error) {
	b, err := d.readBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *lexiconDecoder) readRune() (rune, error) {
	v, err := d.readUint32()
	return rune(v), err
}

// minEncodedNode is the size of a leaf node: end flag and child count.
const minEncodedNode = 1 + 4

func decodeNode[K rune | string](d *lexiconDecoder, readKey func() (K, error)) (*trieNode[K], error) {
	end, err := d.readUint8()
	if err != nil {
		return nil, err
	}
	count, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if int64(count)*minEncodedNode > int64(len(d.data)-d.offset) {
		return nil, fmt.Errorf("%w: %d children at offset %d", ErrCorruptLexicon, count, d.offset)
	}

	node := newTrieNode[K]()
	node.end = end == 1
	for n := uint32(0); n < count; n++ {
		key, err := readKey()
		if err != nil {
			return nil, err
		}
		child, err := decodeNode(d, readKey)
		if err != nil {
			return nil, err
		}
		node.children[key] = child
	}
	return node, nil
}

// Decode replaces the contents of l with the lexicon encoded in data.
func (l *SuffixLexicon) Decode(data []byte) error {
	d, err := openLexicon(data, kindSuffix)
	if err != nil {
		return err
	}
	root, err := decodeNode(d, d.readRune)
	if err != nil {
		return err
	}

	count, err := d.readUint32()
	if err != nil {
		return err
	}
	replacements := NewReplacementLexicon()
	for n := uint32(0); n < count; n++ {
		suffix, err := d.readString()
		if err != nil {
			return err
		}
		replacement, err := d.readString()
		if err != nil {
			return err
		}
		replacements.set(suffix, replacement)
	}
	if !d.isComplete() {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptLexicon, len(d.data)-d.offset)
	}

	l.Trie = &SuffixTrie{root: root, size: root.countEnds()}
	l.Replacements = replacements
	return nil
}

// Decode replaces the contents of t with the trie encoded in data.
func (t *MWETrie) Decode(data []byte) error {
	d, err := openLexicon(data, kindMWE)
	if err != nil {
		return err
	}
	root, err := decodeNode(d, d.readString)
	if err != nil {
		return err
	}
	if !d.isComplete() {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptLexicon, len(d.data)-d.offset)
	}
	t.root = root
	t.size = root.countEnds()
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONCORDANCE
// ═══════════════════════════════════════════════════════════════════════════════
// Bitmaps use the portable roaring format, wrapped as byte strings:
//
//	[docs: bytes]
//	[term count: uint32]
//	  for each term, ascending: [term: string][bitmap: bytes]
//	[category count: uint32]
//	  for each category, ascending: [category: uint8][bitmap: bytes]
//
// The analyzer is not serialized; Decode keeps the receiver's.
// ═══════════════════════════════════════════════════════════════════════════════

func (e *lexiconEncoder) writeBitmap(bm *roaring.Bitmap) error {
	data, err := bm.ToBytes()
	if err != nil {
		return err
	}
	return e.writeBytes(data)
}

func (d *lexiconDecoder) readBitmap() (*roaring.Bitmap, error) {
	data, err := d.readBytes()
	if err != nil {
		return nil, err
	}
	bm := roaring.NewBitmap()
	if err := bm.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLexicon, err)
	}
	return bm, nil
}

// Encode serializes the document, term and category bitmaps.
func (c *Concordance) Encode() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, err := newLexiconEncoder(kindConcordance)
	if err != nil {
		return nil, err
	}
	if err := e.writeBitmap(c.docs); err != nil {
		return nil, err
	}

	if err := e.writeUint32(uint32(len(c.terms))); err != nil {
		return nil, err
	}
	for _, term := range sortedKeys(c.terms) {
		if err := e.writeString(term); err != nil {
			return nil, err
		}
		if err := e.writeBitmap(c.terms[term]); err != nil {
			return nil, err
		}
	}

	if err := e.writeUint32(uint32(len(c.categories))); err != nil {
		return nil, err
	}
	for _, cat := range sortedKeys(c.categories) {
		if err := e.writeUint8(uint8(cat)); err != nil {
			return nil, err
		}
		if err := e.writeBitmap(c.categories[cat]); err != nil {
			return nil, err
		}
	}
	return e.finish()
}

// Decode replaces the contents of c with the concordance encoded in data.
func (c *Concordance) Decode(data []byte) error {
	d, err := openLexicon(data, kindConcordance)
	if err != nil {
		return err
	}
	docs, err := d.readBitmap()
	if err != nil {
		return err
	}

	count, err := d.readUint32()
	if err != nil {
		return err
	}
	terms := make(map[string]*roaring.Bitmap)
	for n := uint32(0); n < count; n++ {
		term, err := d.readString()
		if err != nil {
			return err
		}
		if terms[term], err = d.readBitmap(); err != nil {
			return err
		}
	}

	if count, err = d.readUint32(); err != nil {
		return err
	}
	categories := make(map[Category]*roaring.Bitmap)
	for n := uint32(0); n < count; n++ {
		raw, err := d.readUint8()
		if err != nil {
			return err
		}
		cat := Category(raw)
		if cat.String() == "UNKNOWN" {
			return fmt.Errorf("%w: category %d", ErrCorruptLexicon, raw)
		}
		if categories[cat], err = d.readBitmap(); err != nil {
			return err
		}
	}
	if !d.isComplete() {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptLexicon, len(d.data)-d.offset)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs, c.terms, c.categories = docs, terms, categories
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// FILES
// ═══════════════════════════════════════════════════════════════════════════════

// Encoder is implemented by everything that can be written as a lexicon
// file.
type Encoder interface {
	Encode() ([]byte, error)
}

// WriteLexiconFile encodes v and writes it to path.
func WriteLexiconFile(path string, v Encoder) error {
	data, err := v.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSuffixLexiconFile loads a suffix lexicon written by WriteLexiconFile.
func ReadSuffixLexiconFile(path string) (*SuffixLexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lex := NewSuffixLexicon()
	if err := lex.Decode(data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return lex, nil
}

// ReadMWELexiconFile loads an MWE trie written by WriteLexiconFile.
func ReadMWELexiconFile(path string) (*MWETrie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trie := NewMWETrie()
	if err := trie.Decode(data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return trie, nil
}
