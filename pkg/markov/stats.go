package markov

// ModelStats holds aggregated statistics for a single model.
type ModelStats struct {
	Order            int // The n of the n-gram.
	Contexts         int // The number of unique contexts with at least one continuation.
	TotalChains      int // The number of unique context->next_token links.
	TotalFrequency   int // The sum of frequencies of all links; the total number of trained transitions.
	StartingContexts int // The number of unique contexts a chain can start from.
	VocabSize        int // The number of unique tokens that can be generated, excluding <EOC>.
}

// Stats returns a snapshot of the model's statistics.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		Order:            m.order,
		Contexts:         len(m.chains),
		StartingContexts: len(m.startOrder),
	}
	vocab := make(map[string]struct{})
	for _, c := range m.chains {
		stats.TotalChains += len(c.tokens)
		stats.TotalFrequency += c.total
		for _, tok := range c.tokens {
			if tok.Text != EOCTokenText {
				vocab[tok.Text] = struct{}{}
			}
		}
	}
	stats.VocabSize = len(vocab)
	return stats
}
