package titlegen

import (
	"github.com/CTAG07/titleforge/pkg/similarity"
	"github.com/CTAG07/titleforge/pkg/templating"
	"github.com/CTAG07/titleforge/pkg/validation"
)

// Config holds every tunable of one generation run. The zero value is not
// valid; start from DefaultConfig.
type Config struct {
	// Order is the n of the n-gram model.
	Order int `json:"order" validate:"min=1,max=8"`
	// Temperature controls how adventurous the model's sampling is.
	Temperature float64 `json:"temperature" validate:"gt=0"`
	// MaxLen is the nominal token limit of model output. The model allows
	// ten extra tokens on top of it.
	MaxLen int `json:"max_len" validate:"min=1"`
	// TopK restricts model sampling to the k most frequent continuations.
	// 0 disables it.
	TopK int `json:"top_k" validate:"gte=0"`
	// SeedText biases the first context of model output.
	SeedText string `json:"seed_text"`
	// EnsureKeyword is forced into model output when missing.
	EnsureKeyword string `json:"ensure_keyword"`
	// MaxThe is the number of "the" occurrences kept in any title.
	MaxThe int `json:"max_the" validate:"gte=0"`

	// TemplateProbability is the chance that an attempt uses the template
	// generator instead of the model.
	TemplateProbability  float64 `json:"template_probability" validate:"gte=0,lte=1"`
	AllowContrastPattern bool    `json:"allow_contrast_pattern"`
	MaxWordRepeat        int     `json:"max_word_repeat" validate:"min=1"`
	MaxPhraseRepeat      int     `json:"max_phrase_repeat" validate:"min=1"`
	AdjectiveProbability float64 `json:"adjective_probability" validate:"gte=0,lte=1"`

	// MaxUnigramOverlap and MaxBigramOverlap are the novelty thresholds
	// against every corpus title.
	MaxUnigramOverlap float64 `json:"max_unigram_overlap" validate:"gte=0,lte=1"`
	MaxBigramOverlap  float64 `json:"max_bigram_overlap" validate:"gte=0,lte=1"`

	// TargetCount is the number of titles to produce.
	TargetCount int `json:"target_count" validate:"min=1,max=100000"`
	// AttemptsPerTitle bounds a run to TargetCount*AttemptsPerTitle attempts.
	// Both maxima keep that product well inside an int.
	AttemptsPerTitle int `json:"attempts_per_title" validate:"min=1,max=10000"`
	// RandomSeed makes runs reproducible. 0 seeds from the system.
	RandomSeed uint64 `json:"random_seed"`
}

// DefaultConfig returns a Config with the default values.
func DefaultConfig() Config {
	tc := templating.DefaultConfig()
	return Config{
		Order:                3,
		Temperature:          0.9,
		MaxLen:               9,
		MaxThe:               tc.MaxThe,
		TemplateProbability:  0.40,
		AllowContrastPattern: tc.AllowContrastPattern,
		MaxWordRepeat:        tc.MaxWordRepeat,
		MaxPhraseRepeat:      tc.MaxPhraseRepeat,
		AdjectiveProbability: tc.AdjectiveProbability,
		MaxUnigramOverlap:    similarity.DefaultMaxUnigram,
		MaxBigramOverlap:     similarity.DefaultMaxBigram,
		TargetCount:          20,
		AttemptsPerTitle:     150,
	}
}

// Validate checks the configuration and returns a *validation.Error
// describing every invalid field.
func (c Config) Validate() error {
	return validation.Struct(&c)
}

// TemplateConfig returns the template generator's view of c.
func (c Config) TemplateConfig() templating.TemplateConfig {
	return templating.TemplateConfig{
		AllowContrastPattern: c.AllowContrastPattern,
		MaxThe:               c.MaxThe,
		MaxWordRepeat:        c.MaxWordRepeat,
		MaxPhraseRepeat:      c.MaxPhraseRepeat,
		AdjectiveProbability: c.AdjectiveProbability,
	}
}
