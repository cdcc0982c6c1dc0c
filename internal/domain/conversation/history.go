package conversation

// History is an append-only list of turns with an inverted token index.
// The index maps each token to the ascending indices of turns containing it,
// so the oldest matching turn is always the first entry.
type History struct {
	turns []Turn
	index map[string][]int
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{index: make(map[string][]int)}
}

// Append adds a turn and indexes its keywords.
func (h *History) Append(t Turn) {
	if h.index == nil {
		h.index = make(map[string][]int)
	}
	pos := len(h.turns)
	h.turns = append(h.turns, t)
	for token := range t.keywords {
		h.index[token] = append(h.index[token], pos)
	}
}

// Len returns the number of turns.
func (h *History) Len() int { return len(h.turns) }

// Turns returns the turns oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Last returns the most recent turn.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// Lookup returns the answer of the oldest turn whose keywords intersect the question's.
// First match wins, not best match.
func (h *History) Lookup(question string) (bool, string) {
	t, ok := h.LookupTurn(question)
	if !ok {
		return false, ""
	}
	return true, t.answer
}

// LookupTurn is Lookup returning the whole matching turn.
func (h *History) LookupTurn(question string) (Turn, bool) {
	first := -1
	for token := range ExtractKeywords(question) {
		positions, ok := h.index[token]
		if !ok || len(positions) == 0 {
			continue
		}
		if first < 0 || positions[0] < first {
			first = positions[0]
		}
	}
	if first < 0 {
		return Turn{}, false
	}
	return h.turns[first], true
}

// Lookup scans turns oldest first and returns the first overlapping answer.
// It is the index-free form of History.Lookup over a plain slice.
func Lookup(question string, turns []Turn) (bool, string) {
	kw := ExtractKeywords(question)
	for _, t := range turns {
		if kw.Intersects(t.keywords) {
			return true, t.answer
		}
	}
	return false, ""
}
