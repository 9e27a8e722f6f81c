package similarity

import (
	"math"
	"testing"
)

func TestSets(t *testing.T) {
	u, b := Sets("Krusty Krab's Krusty-Krab!")
	for _, w := range []string{"krusty", "krab", "s"} {
		if _, ok := u[w]; !ok {
			t.Errorf("expected unigram %q in %v", w, u)
		}
	}
	if len(u) != 3 {
		t.Errorf("expected 3 unigrams, got %d: %v", len(u), u)
	}
	for _, bg := range []Bigram{{"krusty", "krab"}, {"krab", "s"}, {"s", "krusty"}} {
		if _, ok := b[bg]; !ok {
			t.Errorf("expected bigram %v in %v", bg, b)
		}
	}
	if len(b) != 3 {
		t.Errorf("expected 3 bigrams, got %d: %v", len(b), b)
	}

	u, b = Sets("?!")
	if len(u) != 0 || len(b) != 0 {
		t.Errorf("expected empty sets for punctuation-only input, got %v %v", u, b)
	}
}

func TestJaccard(t *testing.T) {
	set := func(words ...string) map[string]struct{} {
		m := make(map[string]struct{})
		for _, w := range words {
			m[w] = struct{}{}
		}
		return m
	}

	testCases := []struct {
		name     string
		a, b     map[string]struct{}
		expected float64
	}{
		{name: "Both empty", a: set(), b: set(), expected: 0},
		{name: "One empty", a: set("a"), b: set(), expected: 0},
		{name: "Identical", a: set("a", "b"), b: set("b", "a"), expected: 1},
		{name: "Half", a: set("a", "b"), b: set("b", "c", "d"), expected: 0.25},
		{name: "Disjoint", a: set("a"), b: set("b"), expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Jaccard(tc.a, tc.b); math.Abs(got-tc.expected) > 1e-12 {
				t.Errorf("Jaccard() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestTooSimilar(t *testing.T) {
	ix := NewIndex([]string{"The Krusty Sailor", "Pineapple Under Pressure", "Help Wanted"})

	testCases := []struct {
		name      string
		candidate string
		expected  bool
	}{
		{name: "Exact copy", candidate: "The Krusty Sailor", expected: true},
		{name: "Case-insensitive copy", candidate: "help wanted", expected: true},
		{name: "High word overlap", candidate: "Krusty Sailor", expected: true},
		{name: "Moderate overlap allowed", candidate: "Pineapple Under Water", expected: false},
		{name: "Novel", candidate: "Squidward Learns to Skate", expected: false},
		{name: "One shared word", candidate: "Plankton's Pressure Heist Night", expected: false},
		{name: "Empty candidate", candidate: "", expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ix.TooSimilar(tc.candidate); got != tc.expected {
				uni, bi := ix.MaxOverlap(tc.candidate)
				t.Errorf("TooSimilar(%q) = %v, want %v (unigram %.2f, bigram %.2f)", tc.candidate, got, tc.expected, uni, bi)
			}
		})
	}
}

func TestIndexThresholdOptions(t *testing.T) {
	corpus := []string{"The Krusty Sailor"}
	candidate := "Krusty Sailor"

	if !NewIndex(corpus).TooSimilar(candidate) {
		t.Fatal("expected default thresholds to reject a 2/3 word overlap")
	}
	// unigram 2/3 passes a threshold of 1, bigram 1/2 still trips the default 0.40
	if !NewIndex(corpus, WithMaxUnigram(1)).TooSimilar(candidate) {
		t.Error("expected the bigram threshold to reject the candidate")
	}
	loose := NewIndex(corpus, WithMaxUnigram(1), WithMaxBigram(1))
	if loose.TooSimilar(candidate) {
		t.Error("expected thresholds of 1 to accept any non-identical candidate")
	}
	if !loose.TooSimilar("the krusty sailor") {
		t.Error("exact copies must be rejected regardless of thresholds")
	}
	if loose.Len() != 1 {
		t.Errorf("Len() = %d, want 1", loose.Len())
	}
}
