package templating

import "github.com/CTAG07/titleforge/pkg/validation"

// TemplateConfig holds all configuration options for the template generator.
type TemplateConfig struct {
	// AllowContrastPattern enables the "X vs Y" pattern.
	AllowContrastPattern bool `json:"allow_contrast_pattern"`

	// MaxThe is the number of "the" occurrences kept by normalization.
	MaxThe int `json:"max_the" validate:"gte=0"`

	// MaxWordRepeat is the soft cap on how often a noun or event may be drawn
	// within one batch. Once every word is at the cap, the least used wins.
	MaxWordRepeat int `json:"max_word_repeat" validate:"gte=0"`

	// MaxPhraseRepeat is the hard cap on accepted outputs per phrase family
	// within one batch.
	MaxPhraseRepeat int `json:"max_phrase_repeat" validate:"gte=0"`

	// AdjectiveProbability is the chance that a noun gets an adjective.
	AdjectiveProbability float64 `json:"adjective_probability" validate:"gte=0,lte=1"`
}

// DefaultConfig returns a TemplateConfig with the default values.
func DefaultConfig() TemplateConfig {
	return TemplateConfig{
		AllowContrastPattern: false,
		MaxThe:               1,
		MaxWordRepeat:        1,
		MaxPhraseRepeat:      1,
		AdjectiveProbability: 0.25,
	}
}

// Validate checks the configuration and returns a *validation.Error
// describing every invalid field.
func (c TemplateConfig) Validate() error {
	return validation.Struct(&c)
}
