package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
)

// ErrInvalidOrder is returned when a model is created with an order below 1.
var ErrInvalidOrder = errors.New("markov: order must be at least 1")

// chain holds every observed continuation of one context, in the order the
// continuations were first seen.
type chain struct {
	context []string
	index   map[string]int
	tokens  []ChainToken
	total   int
}

// Model is an n-gram model over tokenized titles. The order is the n of the
// n-gram, so contexts are order-1 tokens long.
//
// A Model is not safe for concurrent Fit calls. Once fitted it is read-only
// and may be shared by concurrent generators, provided each uses its own
// *rand.Rand.
type Model struct {
	order     int
	tokenizer Tokenizer
	chains    map[string]*chain
	// contextOrder keeps chain keys in first-seen order for export and storage.
	contextOrder  []string
	starts        map[string]int
	startOrder    []string
	startContexts [][]string
	logger        *slog.Logger
}

// ExportedModel is the serializable representation of a fitted model, used
// for JSON-based import and export.
type ExportedModel struct {
	Name   string          `json:"name"`
	Order  int             `json:"order"`
	Starts []ExportedStart `json:"starts"`
	Chains []ExportedChain `json:"chains"`
}

// ExportedStart is one entry of the start table.
type ExportedStart struct {
	Context []string `json:"context"`
	Count   int      `json:"count"`
}

// ExportedChain is the serializable representation of a single link
// in a Markov chain, used within an ExportedModel.
type ExportedChain struct {
	Context   []string `json:"context"`
	Next      string   `json:"next"`
	Frequency int      `json:"frequency"`
}

// NewModel creates an empty model of the given order using the
// DefaultTokenizer.
func NewModel(order int) (*Model, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
	}
	return &Model{
		order:     order,
		tokenizer: NewDefaultTokenizer(),
		chains:    make(map[string]*chain),
		starts:    make(map[string]int),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Order returns the n of the n-gram model.
func (m *Model) Order() int {
	return m.order
}

// SetTokenizer replaces the tokenizer used by Fit and Generate.
func (m *Model) SetTokenizer(tokenizer Tokenizer) {
	if tokenizer != nil {
		m.tokenizer = tokenizer
	}
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Empty reports whether the model has never seen a title.
func (m *Model) Empty() bool {
	return len(m.startOrder) == 0
}

// NextTokens returns the observed continuations of context in first-seen
// order, along with the sum of their frequencies. An unseen context yields a
// nil slice and a total of 0.
func (m *Model) NextTokens(context []string) ([]ChainToken, int) {
	c, ok := m.chains[contextKey(context)]
	if !ok {
		return nil, 0
	}
	out := make([]ChainToken, len(c.tokens))
	copy(out, c.tokens)
	return out, c.total
}

func (m *Model) addTransition(context []string, next string, count int) {
	key := contextKey(context)
	c, ok := m.chains[key]
	if !ok {
		c = &chain{
			context: append([]string(nil), context...),
			index:   make(map[string]int),
		}
		m.chains[key] = c
		m.contextOrder = append(m.contextOrder, key)
	}
	if i, seen := c.index[next]; seen {
		c.tokens[i].Freq += count
	} else {
		c.index[next] = len(c.tokens)
		c.tokens = append(c.tokens, ChainToken{Text: next, Freq: count})
	}
	c.total += count
}

func (m *Model) addStart(context []string, count int) {
	key := contextKey(context)
	if _, ok := m.starts[key]; !ok {
		m.startOrder = append(m.startOrder, key)
		m.startContexts = append(m.startContexts, append([]string(nil), context...))
	}
	m.starts[key] += count
}

// Export serializes the model into JSON and writes it to w. This is useful
// for backups or for transferring a fitted model between machines.
func (m *Model) Export(w io.Writer, name string) error {
	exported := ExportedModel{
		Name:   name,
		Order:  m.order,
		Starts: make([]ExportedStart, 0, len(m.startOrder)),
		Chains: make([]ExportedChain, 0, len(m.contextOrder)),
	}
	for i, key := range m.startOrder {
		exported.Starts = append(exported.Starts, ExportedStart{
			Context: m.startContexts[i],
			Count:   m.starts[key],
		})
	}
	for _, key := range m.contextOrder {
		c := m.chains[key]
		for _, tok := range c.tokens {
			exported.Chains = append(exported.Chains, ExportedChain{
				Context:   c.context,
				Next:      tok.Text,
				Frequency: tok.Freq,
			})
		}
	}

	m.logger.Info("Model exported",
		slog.String("model_name", name),
		slog.Int("starts_exported", len(exported.Starts)),
		slog.Int("chains_exported", len(exported.Chains)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// ImportModel reads a JSON representation of a model from r and rebuilds it.
// The model's name is returned alongside it. Contexts of the wrong width,
// empty tokens, tokens containing whitespace and non-positive frequencies
// are rejected.
func ImportModel(r io.Reader) (*Model, string, error) {
	var imported ExportedModel
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return nil, "", fmt.Errorf("failed to decode json model: %w", err)
	}

	m, err := NewModel(imported.Order)
	if err != nil {
		return nil, "", err
	}
	width := m.order - 1

	for _, s := range imported.Starts {
		if len(s.Context) != width || s.Count < 1 || !validTokens(s.Context...) {
			return nil, "", fmt.Errorf("import consistency error: invalid start entry %v (count %d)", s.Context, s.Count)
		}
		m.addStart(s.Context, s.Count)
	}
	for _, c := range imported.Chains {
		if len(c.Context) != width || c.Frequency < 1 || !validTokens(c.Context...) || !validTokens(c.Next) {
			return nil, "", fmt.Errorf("import consistency error: invalid chain link %v -> %q (frequency %d)", c.Context, c.Next, c.Frequency)
		}
		m.addTransition(c.Context, c.Next, c.Frequency)
	}
	return m, imported.Name, nil
}

// validTokens reports whether every token is non-empty and free of
// whitespace, which contextKey relies on.
func validTokens(tokens ...string) bool {
	for _, tok := range tokens {
		if tok == "" || strings.ContainsFunc(tok, unicode.IsSpace) {
			return false
		}
	}
	return true
}
