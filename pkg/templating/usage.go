package templating

// Usage holds the per-batch counters of a generation run. Counters only ever
// grow. A zero Usage is not ready for use; create one with NewUsage.
type Usage struct {
	Words   map[string]int
	Phrases map[Family]int
}

// NewUsage returns empty batch counters.
func NewUsage() *Usage {
	return &Usage{
		Words:   make(map[string]int),
		Phrases: make(map[Family]int),
	}
}

// WordCount returns how often word has been drawn in this batch.
func (u *Usage) WordCount(word string) int {
	return u.Words[word]
}

// PhraseCount returns how many accepted outputs belong to family.
func (u *Usage) PhraseCount(family Family) int {
	return u.Phrases[family]
}
