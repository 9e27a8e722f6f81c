package titlegen

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/CTAG07/titleforge/pkg/markov"
	"github.com/CTAG07/titleforge/pkg/similarity"
	"github.com/CTAG07/titleforge/pkg/templating"
)

// maxPrealloc caps the capacity reserved up front for a run's output.
const maxPrealloc = 1024

// Engine holds the corpus-derived structures of a generation job: the fitted
// model, the novelty index and the template generator. They are built once
// by New and never modified by Run. An Engine is not safe for concurrent Run
// calls because every component shares one *rand.Rand.
type Engine struct {
	config      Config
	rng         *rand.Rand
	model       *markov.Model
	index       *similarity.Index
	templates   *templating.Generator
	corpusLower []string
	genOpts     []markov.GenerateOption
	logger      *slog.Logger
}

type engineOptions struct {
	logger *slog.Logger
	rng    *rand.Rand
	model  *markov.Model
	vocab  *templating.Vocabulary
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithLogger sets the logger used by the engine and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithRand sets the random source. It takes precedence over
// Config.RandomSeed.
func WithRand(rng *rand.Rand) Option {
	return func(o *engineOptions) { o.rng = rng }
}

// WithModel uses a pre-fitted model, for example one loaded from a
// markov.Store, instead of fitting a new one on the corpus.
func WithModel(m *markov.Model) Option {
	return func(o *engineOptions) { o.model = m }
}

// WithVocabulary replaces the template generator's built-in word lists.
func WithVocabulary(v templating.Vocabulary) Option {
	return func(o *engineOptions) { o.vocab = &v }
}

// New validates cfg and prepares an Engine for the given corpus titles. An
// empty corpus is allowed; the model then produces nothing and only
// templates can fill the batch.
func New(titles []string, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := engineOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rng := options.rng
	if rng == nil {
		seed := cfg.RandomSeed
		if seed == 0 {
			seed = rand.Uint64()
		}
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	model := options.model
	if model == nil {
		var err error
		if model, err = markov.NewModel(cfg.Order); err != nil {
			return nil, err
		}
		model.SetLogger(logger)
		model.Fit(titles)
	} else if model.Order() != cfg.Order {
		logger.Warn("Using pre-fitted model with a different order than configured",
			slog.Int("model_order", model.Order()),
			slog.Int("config_order", cfg.Order),
		)
	}

	vocab := templating.DefaultVocabulary()
	if options.vocab != nil {
		vocab = *options.vocab
	}
	templates, err := templating.NewGenerator(rng, vocab, cfg.TemplateConfig())
	if err != nil {
		return nil, err
	}
	templates.SetLogger(logger)

	corpusLower := make([]string, len(titles))
	for i, t := range titles {
		corpusLower[i] = strings.ToLower(t)
	}

	genOpts := []markov.GenerateOption{
		markov.WithMaxLength(cfg.MaxLen),
		markov.WithTemperature(cfg.Temperature),
		markov.WithTopK(cfg.TopK),
		markov.WithMaxThe(cfg.MaxThe),
	}
	if cfg.SeedText != "" {
		genOpts = append(genOpts, markov.WithSeed(cfg.SeedText))
	}
	if cfg.EnsureKeyword != "" {
		genOpts = append(genOpts, markov.WithKeyword(cfg.EnsureKeyword))
	}

	return &Engine{
		config: cfg,
		rng:    rng,
		model:  model,
		index: similarity.NewIndex(titles,
			similarity.WithMaxUnigram(cfg.MaxUnigramOverlap),
			similarity.WithMaxBigram(cfg.MaxBigramOverlap),
		),
		templates:   templates,
		corpusLower: corpusLower,
		genOpts:     genOpts,
		logger:      logger,
	}, nil
}

// Model returns the model the engine samples from.
func (e *Engine) Model() *markov.Model {
	return e.model
}

// Run produces one batch of titles. Each attempt draws from the template
// generator with probability TemplateProbability and from the model
// otherwise. Empty candidates, case-insensitive repeats of the corpus or of
// earlier output, and candidates too similar to a corpus title are
// discarded. The run stops when TargetCount titles are accepted or after
// TargetCount*AttemptsPerTitle attempts, whichever comes first.
func (e *Engine) Run() *Result {
	target := e.config.TargetCount
	budget := target * e.config.AttemptsPerTitle
	usage := templating.NewUsage()
	prealloc := min(target, maxPrealloc)
	seen := make(map[string]struct{}, len(e.corpusLower)+prealloc)
	for _, t := range e.corpusLower {
		seen[t] = struct{}{}
	}

	res := &Result{Titles: make([]string, 0, prealloc)}
	for len(res.Titles) < target && res.Attempts < budget {
		res.Attempts++

		fromTemplate := e.rng.Float64() < e.config.TemplateProbability
		var candidate string
		if fromTemplate {
			candidate = e.templates.Generate(usage)
		} else {
			candidate = e.model.Generate(e.rng, e.genOpts...)
		}

		if candidate == "" {
			res.Rejected.Empty++
			continue
		}
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup {
			res.Rejected.Duplicate++
			continue
		}
		if e.index.TooSimilar(candidate) {
			res.Rejected.TooSimilar++
			e.logger.Debug("Rejected candidate too similar to corpus", "candidate", candidate)
			continue
		}

		res.Titles = append(res.Titles, candidate)
		seen[key] = struct{}{}
		if fromTemplate {
			res.FromTemplate++
		} else {
			res.FromModel++
		}
	}

	if len(res.Titles) < target {
		res.Status = StatusBudgetExhausted
	}

	e.logger.Info("Generation run completed",
		slog.String("status", res.Status.String()),
		slog.Int("accepted", len(res.Titles)),
		slog.Int("target", target),
		slog.Int("attempts", res.Attempts),
		slog.Int("from_template", res.FromTemplate),
		slog.Int("from_model", res.FromModel),
		slog.Int("rejected_empty", res.Rejected.Empty),
		slog.Int("rejected_duplicate", res.Rejected.Duplicate),
		slog.Int("rejected_similar", res.Rejected.TooSimilar),
	)
	return res
}

// Generate is a convenience wrapper that builds an Engine and runs it once.
func Generate(titles []string, cfg Config, opts ...Option) (*Result, error) {
	e, err := New(titles, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(), nil
}
