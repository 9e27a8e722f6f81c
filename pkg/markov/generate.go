package markov

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/CTAG07/titleforge/pkg/textnorm"
)

const (
	// lengthSlack is added to the requested maximum length to leave room for
	// multi-token names such as places and characters.
	lengthSlack = 10
	// countEpsilon keeps the logarithm finite for a zero count.
	countEpsilon = 1e-9
	// minTemperature bounds the temperature away from zero.
	minTemperature = 1e-6
)

// generateOptions Is used by the generate functions to configure default options.
type generateOptions struct {
	seed        string
	maxLength   int
	temperature float64
	topK        int
	keyword     string
	maxThe      int
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in Generate.
type GenerateOption func(*generateOptions)

// WithSeed biases the first context towards the trailing tokens of text.
// The seed itself is not part of the output.
func WithSeed(text string) GenerateOption {
	return func(o *generateOptions) { o.seed = text }
}

// WithMaxLength sets the nominal maximum number of tokens to generate. The
// hard limit is maxLength plus a slack of 10 tokens.
// Default: 9
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

// WithTemperature adjusts the randomness of the token selection.
// Values > 1.0 flatten the distribution, values < 1.0 sharpen it towards the
// most frequent continuation.
// Default: 0.9
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the token selection pool to the top `k` most frequent tokens
// at each step. A value of 0 disables Top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

// WithKeyword forces keyword into the output, prepending it when the generated
// text does not already contain it (case-insensitively).
func WithKeyword(keyword string) GenerateOption {
	return func(o *generateOptions) { o.keyword = keyword }
}

// WithMaxThe sets how many occurrences of "the" survive normalization.
// Default: 1
func WithMaxThe(n int) GenerateOption {
	return func(o *generateOptions) { o.maxThe = n }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{
		maxLength:   9,
		temperature: 0.9,
		maxThe:      1,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// SampleNext draws the token that follows context. An unseen context yields
// EOCTokenText so that generation ends quietly instead of failing.
func (m *Model) SampleNext(rng *rand.Rand, context []string, temperature float64) string {
	return m.sampleNext(rng, context, temperature, 0)
}

func (m *Model) sampleNext(rng *rand.Rand, context []string, temperature float64, topK int) string {
	c, ok := m.chains[contextKey(context)]
	if !ok || len(c.tokens) == 0 {
		return EOCTokenText
	}
	return chooseNextToken(rng, c.tokens, temperature, topK)
}

// Generate produces one normalized title. With a seed, the first context is
// built from the seed's trailing tokens; otherwise it is drawn uniformly from
// the start table. Sampling stops at <EOC> or after maxLength+10 tokens. The
// result is detokenized, gets the keyword when requested and is normalized.
// An empty model yields "".
func (m *Model) Generate(rng *rand.Rand, opts ...GenerateOption) string {
	options := newGenerateOptions(opts)
	width := m.order - 1

	var context []string
	if options.seed != "" {
		context = seedContext(m.tokenizer.Tokenize(options.seed), width)
	} else {
		if len(m.startContexts) == 0 {
			return ""
		}
		context = append([]string(nil), m.startContexts[rng.IntN(len(m.startContexts))]...)
	}

	limit := max(options.maxLength, 0) + lengthSlack
	out := make([]string, 0, limit)
	terminated := false
	for range limit {
		next := m.sampleNext(rng, context, options.temperature, options.topK)
		if next == EOCTokenText {
			terminated = true
			break
		}
		out = append(out, next)
		if width > 0 {
			context = append(context[1:], next)
		}
	}
	if !terminated {
		m.logger.Debug("Generation terminated by reaching the length limit",
			slog.Int("limit", limit),
		)
	}

	text := m.tokenizer.Detokenize(out)
	if options.keyword != "" && !strings.Contains(strings.ToLower(text), strings.ToLower(options.keyword)) {
		text = strings.TrimSpace(options.keyword + " " + text)
	}
	return textnorm.Normalize(text, options.maxThe)
}

// chooseNextToken applies the temperature-scaled softmax over log counts and
// draws once against the cumulative distribution in the order of choices.
func chooseNextToken(rng *rand.Rand, choices []ChainToken, temperature float64, topK int) string {
	if topK > 0 && topK < len(choices) {
		sorted := make([]ChainToken, len(choices))
		copy(sorted, choices)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Freq > sorted[j].Freq
		})
		choices = sorted[:topK]
	}

	t := math.Max(temperature, minTemperature)
	logits := make([]float64, len(choices))
	maxLogit := math.Inf(-1)
	for i, choice := range choices {
		logits[i] = math.Log(float64(choice.Freq)+countEpsilon) / t
		if logits[i] > maxLogit {
			maxLogit = logits[i]
		}
	}

	var totalWeight float64
	for i, l := range logits {
		logits[i] = math.Exp(l - maxLogit)
		totalWeight += logits[i]
	}

	r := rng.Float64()
	var acc float64
	for i, choice := range choices {
		acc += logits[i] / totalWeight
		if r <= acc {
			return choice.Text
		}
	}
	// Rounding can leave the cumulative sum just below r.
	return choices[len(choices)-1].Text
}
