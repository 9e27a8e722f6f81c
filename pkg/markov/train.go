package markov

import "log/slog"

// Fit trains the model on a list of titles. Each title is tokenized, padded
// with order-1 <SOC> tokens and terminated with one <EOC> token. The initial
// context is counted in the start table and every following position adds one
// observation to the transition table. Calling Fit again accumulates counts.
func (m *Model) Fit(titles []string) {
	width := m.order - 1
	var links int

	for _, title := range titles {
		tokens := m.tokenizer.Tokenize(title)
		padded := make([]string, 0, width+len(tokens)+1)
		padded = append(padded, startContext(width)...)
		padded = append(padded, tokens...)
		padded = append(padded, EOCTokenText)

		m.addStart(padded[:width], 1)
		for i := width; i < len(padded); i++ {
			m.addTransition(padded[i-width:i], padded[i], 1)
			links++
		}
	}

	m.logger.Info("Training completed",
		slog.Int("order", m.order),
		slog.Int("titles_processed", len(titles)),
		slog.Int("links_recorded", links),
		slog.Int("contexts", len(m.chains)),
	)
}
