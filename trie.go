// ═══════════════════════════════════════════════════════════════════════════════
// TRIES
// ═══════════════════════════════════════════════════════════════════════════════
// Two tries back the whole package:
//
//	SuffixTrie  keyed by runes, suffixes inserted back to front
//	MWETrie     keyed by whole lemma words, in sentence order
//
// Example: after inserting "ler" and "lerden" the suffix trie looks like
//
//	root
//	└── 'r' ── 'e' ── 'l' (end)
//	└── 'n' ── 'e' ── 'd' ── 'r' ── 'e' ── 'l' (end)
//
// so walking "evlerden" from its last rune reaches "lerden" and stops at 'v'.
//
// Both tries are append-only. Nothing is ever removed once inserted, and
// inserting the same key twice only re-marks the same end node.
// ═══════════════════════════════════════════════════════════════════════════════

package kelime

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

// trieNode is one level of a trie. A node exclusively owns its children.
type trieNode[K comparable] struct {
	children map[K]*trieNode[K]
	end      bool // path from the root to here spells a complete key
}

func newTrieNode[K comparable]() *trieNode[K] {
	return &trieNode[K]{children: make(map[K]*trieNode[K])}
}

// child returns the child under key, creating it if needed.
func (n *trieNode[K]) child(key K) *trieNode[K] {
	next, ok := n.children[key]
	if !ok {
		next = newTrieNode[K]()
		n.children[key] = next
	}
	return next
}

// countEnds returns how many end-marked nodes live under (and including) n.
func (n *trieNode[K]) countEnds() int {
	count := 0
	if n.end {
		count++
	}
	for _, c := range n.children {
		count += c.countEnds()
	}
	return count
}

// ═══════════════════════════════════════════════════════════════════════════════
// SUFFIX TRIE
// ═══════════════════════════════════════════════════════════════════════════════

// SuffixTrie stores suffixes by their runes in reverse order, so a lookup
// walks a token from its last character backward.
type SuffixTrie struct {
	root *trieNode[rune]
	size int
}

// NewSuffixTrie creates an empty suffix trie.
func NewSuffixTrie() *SuffixTrie {
	return &SuffixTrie{root: newTrieNode[rune]()}
}

// Insert adds suffix to the trie. The empty suffix is ignored.
func (t *SuffixTrie) Insert(suffix string) {
	if suffix == "" {
		return
	}
	node := t.root
	for i := len(suffix); i > 0; {
		r, size := utf8.DecodeLastRuneInString(suffix[:i])
		node = node.child(r)
		i -= size
	}
	if !node.end {
		node.end = true
		t.size++
	}
}

// Contains reports whether suffix was inserted.
func (t *SuffixTrie) Contains(suffix string) bool {
	if suffix == "" {
		return false
	}
	node := t.root
	for i := len(suffix); i > 0; {
		r, size := utf8.DecodeLastRuneInString(suffix[:i])
		next, ok := node.children[r]
		if !ok {
			return false
		}
		node = next
		i -= size
	}
	return node.end
}

// Len returns the number of distinct suffixes in the trie.
func (t *SuffixTrie) Len() int {
	return t.size
}

// Candidates walks token from its end toward its start and returns every
// inserted suffix the walk passes through, shortest first.
//
// The walk stops at the first rune with no matching child and never
// backtracks. With "den", "ler" and "lerden" in the trie:
//
//	Candidates("evlerden") → ["den", "lerden"]
//	Candidates("evler")    → ["ler"]
//	Candidates("kitap")    → []
func (t *SuffixTrie) Candidates(token string) []string {
	var candidates []string
	node := t.root
	for i := len(token); i > 0; {
		r, size := utf8.DecodeLastRuneInString(token[:i])
		next, ok := node.children[r]
		if !ok {
			break
		}
		node = next
		i -= size
		if node.end {
			candidates = append(candidates, token[i:])
		}
	}
	return candidates
}

// ═══════════════════════════════════════════════════════════════════════════════
// MWE TRIE
// ═══════════════════════════════════════════════════════════════════════════════

// MWETrie stores multi-word expressions as paths of lowercase lemma words.
type MWETrie struct {
	root *trieNode[string]
	size int
}

// NewMWETrie creates an empty MWE trie.
func NewMWETrie() *MWETrie {
	return &MWETrie{root: newTrieNode[string]()}
}

// Insert adds the expression made of words. Inserting an expression that is
// already present leaves the trie unchanged.
func (t *MWETrie) Insert(words []string) {
	if len(words) == 0 {
		return
	}
	node := t.root
	for _, w := range words {
		node = node.child(w)
	}
	if !node.end {
		node.end = true
		t.size++
	}
}

// Contains reports whether words form a complete expression in the trie.
func (t *MWETrie) Contains(words []string) bool {
	if len(words) == 0 {
		return false
	}
	node := t.root
	for _, w := range words {
		next, ok := node.children[w]
		if !ok {
			return false
		}
		node = next
	}
	return node.end
}

// Len returns the number of distinct expressions in the trie.
func (t *MWETrie) Len() int {
	return t.size
}

// step moves every frontier node to each child whose key is a prefix of
// word. Keys are matched as prefixes because the trie stores lemmas while
// text carries inflected forms ("ele" matches the lemma "el").
func (t *MWETrie) step(frontier []*trieNode[string], word string) []*trieNode[string] {
	var next []*trieNode[string]
	for _, node := range frontier {
		for i := range word {
			if i == 0 {
				continue
			}
			if c, ok := node.children[word[:i]]; ok {
				next = append(next, c)
			}
		}
		if c, ok := node.children[word]; ok {
			next = append(next, c)
		}
	}
	return next
}

func anyEnd(frontier []*trieNode[string]) bool {
	for _, node := range frontier {
		if node.end {
			return true
		}
	}
	return false
}

// String renders the expressions of the trie one per line, for debugging.
func (t *MWETrie) String() string {
	var b strings.Builder
	var walk func(n *trieNode[string], path []string)
	walk = func(n *trieNode[string], path []string) {
		if n.end {
			b.WriteString(strings.Join(path, " "))
			b.WriteByte('\n')
		}
		for _, k := range sortedKeys(n.children) {
			walk(n.children[k], append(path, k))
		}
	}
	walk(t.root, nil)
	return b.String()
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
