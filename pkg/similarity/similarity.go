// Package similarity implements the novelty gate used to reject generated
// titles that are literal or near copies of the source corpus.
package similarity

import (
	"strings"
	"unicode"
)

const (
	// DefaultMaxUnigram is the highest unigram Jaccard overlap a candidate may
	// have with any single corpus title.
	DefaultMaxUnigram = 0.55
	// DefaultMaxBigram is the highest bigram Jaccard overlap a candidate may
	// have with any single corpus title.
	DefaultMaxBigram = 0.40
)

// Bigram is an ordered pair of adjacent words.
type Bigram [2]string

// Sets lower-cases text, replaces everything except ASCII letters, digits and
// whitespace with a space, and returns the resulting word set and the set of
// adjacent word pairs.
func Sets(text string) (map[string]struct{}, map[Bigram]struct{}) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.IsSpace(r):
			return r
		}
		return ' '
	}, strings.ToLower(text))

	words := strings.Fields(cleaned)
	unigrams := make(map[string]struct{}, len(words))
	bigrams := make(map[Bigram]struct{}, len(words))
	for i, w := range words {
		unigrams[w] = struct{}{}
		if i > 0 {
			bigrams[Bigram{words[i-1], w}] = struct{}{}
		}
	}
	return unigrams, bigrams
}

// Jaccard returns |a ∩ b| / |a ∪ b|, defined as 0 when both sets are empty.
func Jaccard[T comparable](a, b map[T]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var inter int
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}

type titleSets struct {
	unigrams map[string]struct{}
	bigrams  map[Bigram]struct{}
}

// Index holds the corpus-derived structures needed by TooSimilar. It is built
// once and never modified afterwards, so it can be shared freely.
type Index struct {
	lower      map[string]struct{}
	sets       []titleSets
	maxUnigram float64
	maxBigram  float64
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithMaxUnigram sets the unigram overlap threshold.
// Default: DefaultMaxUnigram
func WithMaxUnigram(v float64) IndexOption {
	return func(ix *Index) { ix.maxUnigram = v }
}

// WithMaxBigram sets the bigram overlap threshold.
// Default: DefaultMaxBigram
func WithMaxBigram(v float64) IndexOption {
	return func(ix *Index) { ix.maxBigram = v }
}

// NewIndex precomputes the lower-cased title set and the per-title word and
// pair sets for the given corpus.
func NewIndex(titles []string, opts ...IndexOption) *Index {
	ix := &Index{
		lower:      make(map[string]struct{}, len(titles)),
		sets:       make([]titleSets, 0, len(titles)),
		maxUnigram: DefaultMaxUnigram,
		maxBigram:  DefaultMaxBigram,
	}
	for _, opt := range opts {
		opt(ix)
	}
	for _, t := range titles {
		ix.lower[strings.ToLower(t)] = struct{}{}
		u, b := Sets(t)
		ix.sets = append(ix.sets, titleSets{unigrams: u, bigrams: b})
	}
	return ix
}

// Len returns the number of corpus titles in the index.
func (ix *Index) Len() int {
	return len(ix.sets)
}

// Contains reports whether text is a case-insensitive copy of a corpus title.
func (ix *Index) Contains(text string) bool {
	_, ok := ix.lower[strings.ToLower(text)]
	return ok
}

// TooSimilar reports whether candidate is an exact case-insensitive copy of
// a corpus title, or overlaps any single corpus title by more than the
// configured unigram or bigram threshold.
func (ix *Index) TooSimilar(candidate string) bool {
	if ix.Contains(candidate) {
		return true
	}
	cu, cb := Sets(candidate)
	for _, s := range ix.sets {
		if Jaccard(cu, s.unigrams) > ix.maxUnigram {
			return true
		}
		if Jaccard(cb, s.bigrams) > ix.maxBigram {
			return true
		}
	}
	return false
}

// MaxOverlap returns the highest unigram and bigram overlap between candidate
// and any corpus title. The two maxima may come from different titles.
func (ix *Index) MaxOverlap(candidate string) (unigram, bigram float64) {
	cu, cb := Sets(candidate)
	for _, s := range ix.sets {
		unigram = max(unigram, Jaccard(cu, s.unigrams))
		bigram = max(bigram, Jaccard(cb, s.bigrams))
	}
	return unigram, bigram
}
