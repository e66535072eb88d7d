package types

// JobDescription is the job posting the document is tailored against:
// raw text plus the keyword set derived from it. Both are read-only after
// construction.
type JobDescription struct {
	Title    string     `json:"title,omitempty"`
	Company  string     `json:"company,omitempty"`
	Location string     `json:"location,omitempty"`
	Text     string     `json:"text"`
	Keywords KeywordSet `json:"keywords"`
}

// Keyword is a normalized term extracted from a job description with its
// importance weight (frequency plus position boosts).
type Keyword struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// KeywordSet is a deduplicated, weight-ordered list of keywords.
type KeywordSet []Keyword

// Terms returns the bare terms in weight order.
func (ks KeywordSet) Terms() []string {
	terms := make([]string, len(ks))
	for i, kw := range ks {
		terms[i] = kw.Term
	}
	return terms
}

// Contains reports whether the set includes the given normalized term.
func (ks KeywordSet) Contains(term string) bool {
	for _, kw := range ks {
		if kw.Term == term {
			return true
		}
	}
	return false
}

// Weight returns the weight for a term, or 0 when the term is absent.
func (ks KeywordSet) Weight(term string) float64 {
	for _, kw := range ks {
		if kw.Term == term {
			return kw.Weight
		}
	}
	return 0
}
