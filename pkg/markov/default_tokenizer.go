package markov

import "github.com/CTAG07/titleforge/pkg/textnorm"

// DefaultTokenizer is the default implementation of the Tokenizer interface.
// It delegates to the textnorm package, which keeps only letters, digits and
// a small set of title punctuation.
type DefaultTokenizer struct{}

// NewDefaultTokenizer creates a new DefaultTokenizer.
func NewDefaultTokenizer() *DefaultTokenizer {
	return &DefaultTokenizer{}
}

// Tokenize splits text with textnorm.Tokenize.
func (DefaultTokenizer) Tokenize(text string) []string {
	return textnorm.Tokenize(text)
}

// Detokenize joins tokens with textnorm.Detokenize.
func (DefaultTokenizer) Detokenize(tokens []string) string {
	return textnorm.Detokenize(tokens)
}
