package markov

import "strings"

const (
	// SOCTokenText is the reserved text for the Start-Of-Chain padding token.
	SOCTokenText = "<SOC>"
	// EOCTokenText is the reserved text for the End-Of-Chain token.
	EOCTokenText = "<EOC>"
)

// Tokenizer is the contract for splitting titles into tokens and joining
// generated tokens back into text. This keeps the chain logic independent
// of the lexical rules.
type Tokenizer interface {
	// Tokenize splits a title into tokens. Tokens must not contain whitespace.
	Tokenize(text string) []string
	// Detokenize joins generated tokens into display text.
	Detokenize(tokens []string) string
}

// ChainToken represents a potential next token after a given context,
// together with how often it was observed there.
type ChainToken struct {
	Text string
	Freq int
}

// contextKey builds the lookup key for a context. Tokens never contain
// whitespace, so a single space is an unambiguous separator.
func contextKey(context []string) string {
	return strings.Join(context, " ")
}

// splitKey is the inverse of contextKey for a context of the given width.
func splitKey(key string, width int) []string {
	if width == 0 {
		return []string{}
	}
	return strings.Split(key, " ")
}

// startContext returns a context made entirely of <SOC> tokens.
func startContext(width int) []string {
	ctx := make([]string, width)
	for i := range ctx {
		ctx[i] = SOCTokenText
	}
	return ctx
}

// seedContext builds a context from the trailing width tokens of seed,
// left-padded with <SOC> when the seed is shorter.
func seedContext(seed []string, width int) []string {
	if len(seed) >= width {
		return append([]string(nil), seed[len(seed)-width:]...)
	}
	ctx := startContext(width - len(seed))
	return append(ctx, seed...)
}
