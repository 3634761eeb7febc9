// ═══════════════════════════════════════════════════════════════════════════════
// STEM CONCORDANCE
// ═══════════════════════════════════════════════════════════════════════════════
// A concordance maps every analyzed term to the documents it occurs in, so all
// inflections of a word are found through their shared stem:
//
//	Doc 1: "Evlerden çıktılar."
//	Doc 2: "Evde kimse yok."
//	Doc 3: "Ankara'da bir ev aldık."
//
//	"ev"     → {1, 2, 3}
//	"ankara" → {3}
//	"kimse"  → {2}
//
// Alongside the term bitmaps it keeps one bitmap per token category, so
// "documents that mention a date" is one lookup as well.
//
// Every set is a roaring bitmap: boolean queries become bitmap AND, OR and
// AND NOT, and the whole structure serializes compactly.
// ═══════════════════════════════════════════════════════════════════════════════

package kelime

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// Concordance is a term → documents index. It is safe for concurrent use.
type Concordance struct {
	mu sync.RWMutex

	analyzer   *Analyzer
	terms      map[string]*roaring.Bitmap   // term text → document IDs
	categories map[Category]*roaring.Bitmap // token category → document IDs
	docs       *roaring.Bitmap              // every indexed document
}

// NewConcordance creates an empty concordance that analyzes documents and
// queries with analyzer.
func NewConcordance(analyzer *Analyzer) *Concordance {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil, nil, DefaultAnalyzerConfig())
	}
	return &Concordance{
		analyzer:   analyzer,
		terms:      make(map[string]*roaring.Bitmap),
		categories: make(map[Category]*roaring.Bitmap),
		docs:       roaring.NewBitmap(),
	}
}

// Index adds a document. Indexing the same ID again adds the new terms to it.
func (c *Concordance) Index(docID uint32, text string) {
	terms := c.analyzer.Analyze(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs.Add(docID)
	for _, term := range terms {
		bitmapFor(c.terms, term.Text).Add(docID)
		bitmapFor(c.categories, term.Token.Category).Add(docID)
	}
}

func bitmapFor[K comparable](m map[K]*roaring.Bitmap, key K) *roaring.Bitmap {
	bm, ok := m[key]
	if !ok {
		bm = roaring.NewBitmap()
		m[key] = bm
	}
	return bm
}

// Lookup returns the documents containing term. The term is analyzed like a
// document, so "evlerde" finds documents indexed under "ev". A term that
// analyzes to several terms matches documents containing all of them.
//
// The returned bitmap is a copy and may be modified.
func (c *Concordance) Lookup(term string) *roaring.Bitmap {
	terms := c.analyzer.Analyze(term)
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var result *roaring.Bitmap
	for _, t := range terms {
		bm, ok := c.terms[t.Text]
		if !ok {
			return roaring.NewBitmap()
		}
		if result == nil {
			result = bm.Clone()
		} else {
			result.And(bm)
		}
	}
	return result
}

// Category returns the documents containing at least one token of cat.
func (c *Concordance) Category(cat Category) *roaring.Bitmap {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if bm, ok := c.categories[cat]; ok {
		return bm.Clone()
	}
	return roaring.NewBitmap()
}

// Docs returns every indexed document ID.
func (c *Concordance) Docs() *roaring.Bitmap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs.Clone()
}

// Len returns the number of indexed documents.
func (c *Concordance) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.docs.GetCardinality())
}

// Terms returns the number of distinct terms.
func (c *Concordance) Terms() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.terms)
}
