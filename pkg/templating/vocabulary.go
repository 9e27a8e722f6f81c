package templating

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/CTAG07/titleforge/pkg/validation"
)

// Vocabulary holds the word lists the surface patterns are filled from.
// Every list must hold at least one non-empty entry.
type Vocabulary struct {
	Characters       []string `json:"characters" validate:"min=1,dive,required"`
	Places           []string `json:"places" validate:"min=1,dive,required"`
	Nouns            []string `json:"nouns" validate:"min=1,dive,required"`
	BaseVerbs        []string `json:"base_verbs" validate:"min=1,dive,required"`
	ThirdPersonVerbs []string `json:"third_person_verbs" validate:"min=1,dive,required"`
	Events           []string `json:"events" validate:"min=1,dive,required"`
	Adjectives       []string `json:"adjectives" validate:"min=1,dive,required"`
}

var (
	defaultCharacters = []string{"SpongeBob", "Patrick", "Squidward", "Mr. Krabs", "Plankton", "Sandy", "Gary"}
	defaultPlaces     = []string{"Bikini Bottom", "Rock Bottom", "The Krusty Krab", "The Chum Bucket", "Goo Lagoon", "Boating School"}
	defaultNouns      = []string{
		"Barnacle", "Bubble", "Bucket", "Clarinet", "Coupon", "Jellyfish", "Kelp", "Patty",
		"Pineapple", "Plankton", "Suds", "Underpants", "Tartar", "Lagoon", "Mustard",
	}
	defaultBaseVerbs = []string{
		"Bake", "Fry", "Prank", "Apologize", "Hide", "Pay", "Pose", "Quit",
		"Resign", "Recycle", "Budget", "Invest", "Compost", "Skate", "Cook", "Train",
	}
	defaultThirdPersonVerbs = []string{
		"Bakes", "Fries", "Pranks", "Apologizes", "Hides", "Pays", "Poses", "Quits",
		"Resigns", "Recycles", "Budgets", "Invests", "Composts", "Skates", "Cooks", "Trains",
	}
	defaultEvents = []string{
		"Crisis", "Capers", "Chronicles", "Debacle", "Dilemma", "Day", "Night", "Makeover",
		"Mystery", "Mission", "Meltdown", "Mix-Up", "Misadventure", "Audit", "Heist",
	}
	defaultAdjectives = []string{"Suspicious", "Wiggly", "Nautical", "Crunchy", "Heroic", "Dubious"}
)

// DefaultVocabulary returns a fresh copy of the built-in word lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Characters:       append([]string(nil), defaultCharacters...),
		Places:           append([]string(nil), defaultPlaces...),
		Nouns:            append([]string(nil), defaultNouns...),
		BaseVerbs:        append([]string(nil), defaultBaseVerbs...),
		ThirdPersonVerbs: append([]string(nil), defaultThirdPersonVerbs...),
		Events:           append([]string(nil), defaultEvents...),
		Adjectives:       append([]string(nil), defaultAdjectives...),
	}
}

// LoadVocabulary reads a JSON vocabulary file. Lists that are missing or
// empty in the file fall back to the built-in defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("could not read vocabulary file: %w", err)
	}

	var vocab Vocabulary
	if err = json.Unmarshal(data, &vocab); err != nil {
		return Vocabulary{}, fmt.Errorf("could not parse vocabulary file %s: %w", path, err)
	}

	defaults := DefaultVocabulary()
	for _, pair := range []struct{ dst, def *[]string }{
		{&vocab.Characters, &defaults.Characters},
		{&vocab.Places, &defaults.Places},
		{&vocab.Nouns, &defaults.Nouns},
		{&vocab.BaseVerbs, &defaults.BaseVerbs},
		{&vocab.ThirdPersonVerbs, &defaults.ThirdPersonVerbs},
		{&vocab.Events, &defaults.Events},
		{&vocab.Adjectives, &defaults.Adjectives},
	} {
		if len(*pair.dst) == 0 {
			*pair.dst = *pair.def
		}
	}

	if err = vocab.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return vocab, nil
}

// Validate checks that every list is present and free of empty entries.
func (v Vocabulary) Validate() error {
	return validation.Struct(&v)
}
