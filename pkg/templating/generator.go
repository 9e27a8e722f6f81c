package templating

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"text/template"

	"github.com/CTAG07/titleforge/pkg/textnorm"
)

// Generator renders template titles. It holds no batch state; the caller
// passes a Usage to every Generate call. A Generator is not safe for
// concurrent use because it shares the caller's *rand.Rand.
type Generator struct {
	rng      *rand.Rand
	vocab    Vocabulary
	config   TemplateConfig
	patterns []pattern
	logger   *slog.Logger
}

// NewGenerator validates vocab and config and returns a Generator drawing
// from rng. A nil rng falls back to a randomly seeded source.
func NewGenerator(rng *rand.Rand, vocab Vocabulary, config TemplateConfig) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := vocab.Validate(); err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	patterns := slices.Clone(basePatterns)
	if config.AllowContrastPattern {
		patterns = append(patterns, contrastPattern)
	}

	return &Generator{
		rng:      rng,
		vocab:    vocab,
		config:   config,
		patterns: patterns,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the Generator. By default, all logs are discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Config returns the generator's configuration.
func (g *Generator) Config() TemplateConfig {
	return g.config
}

// Generate returns one normalized template title and records the batch usage
// in usage. Patterns are tried in random order. A pattern is skipped when its
// tagged family is at the phrase cap, or when the rendered text matches a
// family at the cap. If every pattern is skipped, the plain
// "<character> and <noun> <event>" form is returned and no phrase counter
// changes. Word counters are updated by the draws even if the chosen pattern
// does not use the drawn word.
func (g *Generator) Generate(usage *Usage) string {
	s := slots{
		Character: pick(g.rng, g.vocab.Characters),
		Place:     pick(g.rng, g.vocab.Places),
		Noun:      sampleUnique(g.rng, g.vocab.Nouns, usage, g.config.MaxWordRepeat),
		BaseVerb:  pick(g.rng, g.vocab.BaseVerbs),
		Verb:      pick(g.rng, g.vocab.ThirdPersonVerbs),
		Event:     sampleUnique(g.rng, g.vocab.Events, usage, g.config.MaxWordRepeat),
	}
	if g.rng.Float64() < g.config.AdjectiveProbability {
		s.Adjective = pick(g.rng, g.vocab.Adjectives)
	}

	limit := g.config.MaxPhraseRepeat
	for _, i := range g.rng.Perm(len(g.patterns)) {
		p := g.patterns[i]
		if p.family != "" && usage.Phrases[p.family] >= limit {
			continue
		}

		out, err := g.render(p.tmpl, s)
		if err != nil {
			g.logger.Warn("Failed to render pattern", "pattern", p.name, "error", err)
			continue
		}

		matched := MatchFamilies(out)
		if slices.ContainsFunc(matched, func(f Family) bool { return usage.Phrases[f] >= limit }) {
			continue
		}

		if p.family != "" && !slices.Contains(matched, p.family) {
			matched = append(matched, p.family)
		}
		for _, f := range matched {
			usage.Phrases[f]++
		}
		return out
	}

	out := textnorm.Normalize(fmt.Sprintf("%s and %s %s", s.Character, s.Noun, s.Event), g.config.MaxThe)
	g.logger.Debug("All patterns blocked by phrase caps, using fallback", "title", out)
	return out
}

func (g *Generator) render(t *template.Template, s slots) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, s); err != nil {
		return "", err
	}
	return textnorm.Normalize(b.String(), g.config.MaxThe), nil
}
