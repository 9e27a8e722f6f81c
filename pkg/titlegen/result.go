package titlegen

// Status tells why a run stopped.
type Status int

const (
	// StatusQuotaMet means the run produced TargetCount titles.
	StatusQuotaMet Status = iota
	// StatusBudgetExhausted means the attempt budget ran out first. The
	// result is shorter than requested, which is not an error.
	StatusBudgetExhausted
)

func (s Status) String() string {
	switch s {
	case StatusQuotaMet:
		return "quota met"
	case StatusBudgetExhausted:
		return "budget exhausted"
	default:
		return "unknown"
	}
}

// Rejections counts discarded candidates by reason.
type Rejections struct {
	Empty      int `json:"empty"`
	Duplicate  int `json:"duplicate"`
	TooSimilar int `json:"too_similar"`
}

// Result is the outcome of one run.
type Result struct {
	Titles       []string   `json:"titles"`
	Attempts     int        `json:"attempts"`
	Status       Status     `json:"status"`
	Rejected     Rejections `json:"rejected"`
	FromTemplate int        `json:"from_template"`
	FromModel    int        `json:"from_model"`
}

// Short reports whether the run stopped before reaching its target.
func (r *Result) Short() bool {
	return r.Status == StatusBudgetExhausted
}
