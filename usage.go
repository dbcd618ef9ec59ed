package playground

// Usage tracks token consumption reported by the backend.
//
// Backends report counters inconsistently: some send only prompt and
// completion counts, some only the total. Total normalizes both.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Total returns TotalTokens when reported, otherwise the sum of the parts.
func (u Usage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// IsZero reports whether no counters were set.
func (u Usage) IsZero() bool {
	return u == Usage{}
}
