package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CTAG07/titleforge/pkg/markov"
	"github.com/CTAG07/titleforge/pkg/templating"
	"github.com/CTAG07/titleforge/pkg/titlegen"
)

type generateOptions struct {
	in        string
	out       string
	modelName string
	modelDB   string
	vocab     string
	gen       titlegen.Config
}

func newGenerateCommand(c *cli) *cobra.Command {
	opts := &generateOptions{gen: titlegen.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of new titles",
		Long: `Generate a batch of new titles from a corpus file (CSV, TSV, JSON, JSONL or
plain text). Flags override the generation_config section of the config file.
The titles are printed and written to a single-column CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "clean_titles.csv", "Corpus file with real titles")
	f.StringVar(&opts.out, "out", "generated_titles.csv", "Output CSV file, empty to skip writing")
	f.StringVar(&opts.modelName, "model-name", "", "Use a stored model instead of fitting the corpus")
	f.StringVar(&opts.modelDB, "model-db", "", "Model database, defaults to database_path from the config")
	f.StringVar(&opts.vocab, "vocab", "", "JSON vocabulary file for templates, defaults to vocabulary_path from the config")

	f.IntVar(&opts.gen.TargetCount, "num", opts.gen.TargetCount, "Number of titles to generate")
	f.StringVar(&opts.gen.SeedText, "seed-text", "", "Text biasing the start of model output")
	f.Float64Var(&opts.gen.Temperature, "temp", opts.gen.Temperature, "Sampling temperature")
	f.IntVar(&opts.gen.MaxLen, "max-len", opts.gen.MaxLen, "Nominal token limit of model output")
	f.IntVar(&opts.gen.Order, "order", opts.gen.Order, "n-gram order")
	f.IntVar(&opts.gen.TopK, "top-k", opts.gen.TopK, "Restrict sampling to the k most frequent continuations, 0 disables")
	f.StringVar(&opts.gen.EnsureKeyword, "force-keyword", "", "Keyword forced into model output")
	f.Float64Var(&opts.gen.TemplateProbability, "use-templates", opts.gen.TemplateProbability, "Chance to use a template per attempt [0-1]")
	f.BoolVar(&opts.gen.AllowContrastPattern, "allow-vs", false, "Allow the \"X vs Y\" template")
	f.IntVar(&opts.gen.MaxThe, "max-the", opts.gen.MaxThe, "Max \"the\" allowed in a title")
	f.IntVar(&opts.gen.MaxWordRepeat, "max-word-repeat", opts.gen.MaxWordRepeat, "Max repeats of template nouns and events per batch")
	f.IntVar(&opts.gen.MaxPhraseRepeat, "max-phrase-repeat", opts.gen.MaxPhraseRepeat, "Max repeats of Makeover/Operation/License phrases per batch")
	f.IntVar(&opts.gen.AttemptsPerTitle, "attempts-per-title", opts.gen.AttemptsPerTitle, "Attempt budget per requested title")
	f.Uint64Var(&opts.gen.RandomSeed, "random-seed", 0, "Seed for reproducible runs, 0 picks one at random")

	return cmd
}

// generationFlags maps flag names to the fields they override.
var generationFlags = map[string]func(dst, src *titlegen.Config){
	"num":                func(d, s *titlegen.Config) { d.TargetCount = s.TargetCount },
	"seed-text":          func(d, s *titlegen.Config) { d.SeedText = s.SeedText },
	"temp":               func(d, s *titlegen.Config) { d.Temperature = s.Temperature },
	"max-len":            func(d, s *titlegen.Config) { d.MaxLen = s.MaxLen },
	"order":              func(d, s *titlegen.Config) { d.Order = s.Order },
	"top-k":              func(d, s *titlegen.Config) { d.TopK = s.TopK },
	"force-keyword":      func(d, s *titlegen.Config) { d.EnsureKeyword = s.EnsureKeyword },
	"use-templates":      func(d, s *titlegen.Config) { d.TemplateProbability = s.TemplateProbability },
	"allow-vs":           func(d, s *titlegen.Config) { d.AllowContrastPattern = s.AllowContrastPattern },
	"max-the":            func(d, s *titlegen.Config) { d.MaxThe = s.MaxThe },
	"max-word-repeat":    func(d, s *titlegen.Config) { d.MaxWordRepeat = s.MaxWordRepeat },
	"max-phrase-repeat":  func(d, s *titlegen.Config) { d.MaxPhraseRepeat = s.MaxPhraseRepeat },
	"attempts-per-title": func(d, s *titlegen.Config) { d.AttemptsPerTitle = s.AttemptsPerTitle },
	"random-seed":        func(d, s *titlegen.Config) { d.RandomSeed = s.RandomSeed },
}

// effectiveConfig starts from the config file and applies every flag the
// user set explicitly.
func (c *cli) effectiveConfig(cmd *cobra.Command, opts *generateOptions) titlegen.Config {
	cfg := *c.config.Generation
	for name, apply := range generationFlags {
		if cmd.Flags().Changed(name) {
			apply(&cfg, &opts.gen)
		}
	}
	return cfg
}

func (c *cli) runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	cfg := c.effectiveConfig(cmd, opts)

	titles, err := loadTitles(opts.in)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(titles) == 0 {
		c.logger.Warn("Corpus is empty, only templates can produce titles", "path", opts.in)
	}
	c.logger.Info("Loaded corpus", "path", opts.in, "titles", len(titles))

	engineOpts := []titlegen.Option{titlegen.WithLogger(c.logger)}

	vocabPath := opts.vocab
	if vocabPath == "" {
		vocabPath = c.config.VocabularyPath
	}
	if vocabPath != "" {
		vocab, err := templating.LoadVocabulary(vocabPath)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, titlegen.WithVocabulary(vocab))
	}

	if opts.modelName != "" {
		model, err := c.loadStoredModel(cmd, opts)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, titlegen.WithModel(model))
	}

	res, err := titlegen.Generate(titles, cfg, engineOpts...)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "--- Generated Episode Titles ---")
	for i, t := range res.Titles {
		fmt.Fprintf(w, "%02d. %s\n", i+1, t)
	}
	if res.Short() {
		fmt.Fprintf(w, "\nOnly %d of %d titles after %d attempts (%s).\n", len(res.Titles), cfg.TargetCount, res.Attempts, res.Status)
	}

	if opts.out != "" {
		if err = writeTitlesCSV(opts.out, "generated_title", res.Titles); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nSaved %d titles -> %s\n", len(res.Titles), opts.out)
	}
	return nil
}

func (c *cli) loadStoredModel(cmd *cobra.Command, opts *generateOptions) (*markov.Model, error) {
	dataSource := opts.modelDB
	if dataSource == "" {
		dataSource = c.config.DatabasePath
	}
	db, store, err := openStore(dataSource, c.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		store.Close()
		_ = db.Close()
	}()

	model, err := store.LoadModel(cmd.Context(), opts.modelName)
	if errors.Is(err, markov.ErrModelNotFound) {
		return nil, fmt.Errorf("%w (save one with 'titleforge model save %s')", err, opts.modelName)
	}
	if err != nil {
		return nil, err
	}
	model.SetLogger(c.logger)
	return model, nil
}
