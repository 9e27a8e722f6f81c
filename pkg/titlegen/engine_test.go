package titlegen

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/CTAG07/titleforge/pkg/markov"
	"github.com/CTAG07/titleforge/pkg/similarity"
	"github.com/CTAG07/titleforge/pkg/templating"
	"github.com/CTAG07/titleforge/pkg/validation"
)

var testCorpus = []string{
	"Help Wanted", "Reef Blower", "Tea at the Treedome", "Bubblestand", "Ripped Pants",
	"Jellyfishing", "Plankton!", "Naughty Nautical Neighbors", "Boating School", "Pizza Delivery",
	"Home Sweet Pineapple", "Mermaid Man and Barnacle Boy", "Pickles", "Hall Monitor", "Jellyfish Jam",
	"Sandy's Rocket", "Squeaky Boots", "Nature Pants", "Opposite Day", "Culture Shock",
	"F.U.N.", "MuscleBob BuffPants", "Squidward the Unfriendly Ghost", "The Chaperone", "Employee of the Month",
	"Scaredy Pants", "I Was a Teenage Gary", "SB-129", "Karate Choppers", "Sleepy Time",
	"Suds", "Valentine's Day", "The Paper", "Arrgh!", "Rock Bottom",
	"Texas", "Walking Small", "Fools in April", "Neptune's Spatula", "Hooky",
}

func testConfig(seed uint64) Config {
	cfg := DefaultConfig()
	cfg.RandomSeed = seed
	return cfg
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "Defaults", mutate: func(*Config) {}},
		{name: "Zero order", mutate: func(c *Config) { c.Order = 0 }, field: "order"},
		{name: "Zero temperature", mutate: func(c *Config) { c.Temperature = 0 }, field: "temperature"},
		{name: "Zero max length", mutate: func(c *Config) { c.MaxLen = 0 }, field: "max_len"},
		{name: "Negative max the", mutate: func(c *Config) { c.MaxThe = -1 }, field: "max_the"},
		{name: "Template probability above 1", mutate: func(c *Config) { c.TemplateProbability = 1.2 }, field: "template_probability"},
		{name: "Zero word repeat", mutate: func(c *Config) { c.MaxWordRepeat = 0 }, field: "max_word_repeat"},
		{name: "Negative phrase repeat", mutate: func(c *Config) { c.MaxPhraseRepeat = -1 }, field: "max_phrase_repeat"},
		{name: "Zero target", mutate: func(c *Config) { c.TargetCount = 0 }, field: "target_count"},
		{name: "Zero attempts", mutate: func(c *Config) { c.AttemptsPerTitle = 0 }, field: "attempts_per_title"},
		{name: "Huge target", mutate: func(c *Config) { c.TargetCount = math.MaxInt }, field: "target_count"},
		{name: "Budget overflow", mutate: func(c *Config) { c.TargetCount = math.MaxInt/150 + 1; c.AttemptsPerTitle = 150 }, field: "target_count"},
		{name: "Huge attempts", mutate: func(c *Config) { c.AttemptsPerTitle = math.MaxInt }, field: "attempts_per_title"},
		{name: "Largest allowed", mutate: func(c *Config) { c.TargetCount = 100000; c.AttemptsPerTitle = 10000 }},
		{name: "Negative top k", mutate: func(c *Config) { c.TopK = -3 }, field: "top_k"},
		{name: "Overlap above 1", mutate: func(c *Config) { c.MaxBigramOverlap = 2 }, field: "max_bigram_overlap"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			var ve *validation.Error
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want *validation.Error", err)
			}
			if !ve.Has(tc.field) {
				t.Errorf("expected field %q in %v", tc.field, ve.Errors())
			}

			if _, err = New(testCorpus, cfg); !errors.As(err, &ve) {
				t.Errorf("New() error = %v, want *validation.Error", err)
			}
		})
	}
}

func TestNewInvalidVocabulary(t *testing.T) {
	vocab := templating.DefaultVocabulary()
	vocab.Places = nil
	var ve *validation.Error
	if _, err := New(testCorpus, testConfig(1), WithVocabulary(vocab)); !errors.As(err, &ve) {
		t.Fatalf("New() error = %v, want *validation.Error", err)
	}
}

func TestRunOutputProperties(t *testing.T) {
	index := similarity.NewIndex(testCorpus)
	corpus := make(map[string]bool)
	for _, title := range testCorpus {
		corpus[strings.ToLower(title)] = true
	}

	for seed := uint64(1); seed <= 10; seed++ {
		res, err := Generate(testCorpus, testConfig(seed))
		if err != nil {
			t.Fatalf("seed %d: Generate() failed: %v", seed, err)
		}
		if len(res.Titles) > 20 {
			t.Fatalf("seed %d: %d titles exceeds the target", seed, len(res.Titles))
		}
		if res.Attempts > 20*150 {
			t.Fatalf("seed %d: %d attempts exceeds the budget", seed, res.Attempts)
		}
		if res.FromModel+res.FromTemplate != len(res.Titles) {
			t.Errorf("seed %d: source counts %d+%d do not add up to %d", seed, res.FromModel, res.FromTemplate, len(res.Titles))
		}
		rejected := res.Rejected.Empty + res.Rejected.Duplicate + res.Rejected.TooSimilar
		if rejected+len(res.Titles) != res.Attempts {
			t.Errorf("seed %d: %d rejected + %d accepted != %d attempts", seed, rejected, len(res.Titles), res.Attempts)
		}
		if (len(res.Titles) == 20) != (res.Status == StatusQuotaMet) {
			t.Errorf("seed %d: status %v with %d titles", seed, res.Status, len(res.Titles))
		}

		seen := make(map[string]bool)
		for _, title := range res.Titles {
			key := strings.ToLower(title)
			if seen[key] {
				t.Errorf("seed %d: duplicate title %q", seed, title)
			}
			if corpus[key] {
				t.Errorf("seed %d: corpus title %q reproduced", seed, title)
			}
			seen[key] = true

			uni, bi := index.MaxOverlap(title)
			if uni > similarity.DefaultMaxUnigram || bi > similarity.DefaultMaxBigram {
				t.Errorf("seed %d: %q overlaps the corpus (unigram %.2f, bigram %.2f)", seed, title, uni, bi)
			}
			if n := countThe(title); n > 1 {
				t.Errorf("seed %d: %q has %d occurrences of \"the\"", seed, title, n)
			}
		}
	}
}

func countThe(s string) int {
	var n int
	for _, w := range strings.Fields(s) {
		if strings.EqualFold(w, "the") {
			n++
		}
	}
	return n
}

func TestRunBudgetExhausted(t *testing.T) {
	cfg := testConfig(3)
	cfg.TargetCount = 4
	cfg.TemplateProbability = 0

	res, err := Generate(nil, cfg)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if len(res.Titles) != 0 {
		t.Errorf("expected no titles from an empty corpus without templates, got %v", res.Titles)
	}
	if res.Attempts != 4*150 || res.Rejected.Empty != 4*150 {
		t.Errorf("Attempts = %d, Rejected.Empty = %d, want %d", res.Attempts, res.Rejected.Empty, 4*150)
	}
	if res.Status != StatusBudgetExhausted || !res.Short() {
		t.Errorf("Status = %v, want %v", res.Status, StatusBudgetExhausted)
	}
	if res.Status.String() != "budget exhausted" {
		t.Errorf("Status.String() = %q", res.Status.String())
	}
}

func TestRunLargeTarget(t *testing.T) {
	cfg := testConfig(3)
	cfg.TargetCount = 100000
	cfg.AttemptsPerTitle = 1
	cfg.TemplateProbability = 0

	res, err := Generate(nil, cfg)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if res.Attempts != 100000 {
		t.Errorf("Attempts = %d, want 100000", res.Attempts)
	}
	if c := cap(res.Titles); c > maxPrealloc {
		t.Errorf("cap(Titles) = %d, want at most %d", c, maxPrealloc)
	}
}

func TestRunTemplatesOnly(t *testing.T) {
	cfg := testConfig(5)
	cfg.TargetCount = 5
	cfg.TemplateProbability = 1

	res, err := Generate(nil, cfg)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if res.Status != StatusQuotaMet || len(res.Titles) != 5 {
		t.Fatalf("expected 5 template titles, got %d (%v)", len(res.Titles), res.Status)
	}
	if res.FromTemplate != 5 || res.FromModel != 0 {
		t.Errorf("FromTemplate = %d, FromModel = %d", res.FromTemplate, res.FromModel)
	}
	families := make(map[templating.Family]int)
	for _, title := range res.Titles {
		for _, f := range templating.MatchFamilies(title) {
			families[f]++
		}
	}
	for f, n := range families {
		if n > cfg.MaxPhraseRepeat {
			t.Errorf("family %q used %d times", f, n)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	a, err := Generate(testCorpus, testConfig(99))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	b, err := Generate(testCorpus, testConfig(99))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if !slices.Equal(a.Titles, b.Titles) || a.Attempts != b.Attempts {
		t.Errorf("same seed produced different runs:\n%v\n%v", a.Titles, b.Titles)
	}

	rng := rand.New(rand.NewPCG(99, 99))
	c, err := Generate(testCorpus, testConfig(0), WithRand(rng))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if !slices.Equal(a.Titles, c.Titles) {
		t.Errorf("WithRand did not reproduce the seeded run:\n%v\n%v", a.Titles, c.Titles)
	}
}

func TestRunWithModel(t *testing.T) {
	m, err := markov.NewModel(2)
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	m.Fit([]string{"Squidward's Clarinet Recital", "Gary's Night Out", "Squidward's Night Out"})

	cfg := testConfig(4)
	cfg.TemplateProbability = 0
	cfg.TargetCount = 3
	cfg.EnsureKeyword = "Squidward"

	e, err := New(testCorpus, cfg, WithModel(m))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if e.Model() != m {
		t.Fatal("engine did not use the provided model")
	}
	res := e.Run()
	if res.FromModel != len(res.Titles) {
		t.Errorf("expected every title from the model, got %d of %d", res.FromModel, len(res.Titles))
	}
	for _, title := range res.Titles {
		if !strings.Contains(strings.ToLower(title), "squidward") {
			t.Errorf("title %q is missing the forced keyword", title)
		}
	}
}

func BenchmarkRun(b *testing.B) {
	e, err := New(testCorpus, testConfig(1))
	if err != nil {
		b.Fatalf("New() failed: %v", err)
	}
	b.ReportAllocs()
	for b.Loop() {
		_ = e.Run()
	}
}
