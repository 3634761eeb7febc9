package kelime

// ═══════════════════════════════════════════════════════════════════════════════
// REPLACEMENT LEXICON
// ═══════════════════════════════════════════════════════════════════════════════
// Turkish stems change at the boundary when a suffix attaches:
//
//	kitabı → kitap   (suffix "bı", replacement "p")
//	gideceğim → git   (suffix "deceğim", replacement "t")
//
// The replacement lexicon remembers, for each suffix, which string has to be
// put back once the suffix is removed. Training data disagrees with itself,
// so every observation is tallied first and compile() keeps the most
// frequent one.
// ═══════════════════════════════════════════════════════════════════════════════

// ReplacementLexicon maps a suffix to the replacement that restores the
// lemma's tail after the suffix is removed.
type ReplacementLexicon struct {
	replacements map[string]string
}

// NewReplacementLexicon creates an empty replacement lexicon.
func NewReplacementLexicon() *ReplacementLexicon {
	return &ReplacementLexicon{replacements: make(map[string]string)}
}

// Lookup returns the replacement recorded for suffix.
func (l *ReplacementLexicon) Lookup(suffix string) (string, bool) {
	r, ok := l.replacements[suffix]
	return r, ok
}

// Len returns the number of suffixes with a replacement.
func (l *ReplacementLexicon) Len() int {
	return len(l.replacements)
}

// set records a compiled replacement. Empty replacements are never stored.
func (l *ReplacementLexicon) set(suffix, replacement string) {
	if replacement == "" {
		return
	}
	l.replacements[suffix] = replacement
}

// replacementTally collects every observed replacement per suffix, in the
// order they were seen.
type replacementTally struct {
	order    []string            // suffixes in first-seen order
	observed map[string][]string // suffix → replacements in observation order
}

func newReplacementTally() *replacementTally {
	return &replacementTally{observed: make(map[string][]string)}
}

// observe records one (suffix, replacement) observation. Empty
// replacements are not tallied.
func (t *replacementTally) observe(suffix, replacement string) {
	if replacement == "" {
		return
	}
	if _, ok := t.observed[suffix]; !ok {
		t.order = append(t.order, suffix)
	}
	t.observed[suffix] = append(t.observed[suffix], replacement)
}

// merge appends all observations of other after the ones already held.
func (t *replacementTally) merge(other *replacementTally) {
	for _, suffix := range other.order {
		for _, r := range other.observed[suffix] {
			t.observe(suffix, r)
		}
	}
}

// compile collapses the tally into a lexicon holding one replacement per
// suffix.
func (t *replacementTally) compile() *ReplacementLexicon {
	lex := NewReplacementLexicon()
	for _, suffix := range t.order {
		lex.set(suffix, mostFrequent(t.observed[suffix]))
	}
	return lex
}

// mostFrequent returns the string with the highest count. On a tie the
// first string in list order whose count equals the maximum wins:
//
//	["an", "an", "iz"]       → "an"
//	["iz", "an", "an", "iz"] → "iz"
func mostFrequent(list []string) string {
	counts := make(map[string]int, len(list))
	best := 0
	for _, s := range list {
		counts[s]++
		if counts[s] > best {
			best = counts[s]
		}
	}
	for _, s := range list {
		if counts[s] == best {
			return s
		}
	}
	return ""
}
