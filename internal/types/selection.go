package types

// ScoredClaim pairs a claim with its blended relevance score and the
// contributing sub-scores. Kept for tie-breaking and the trace, never
// persisted on its own.
type ScoredClaim struct {
	Claim    *Claim  `json:"claim"`
	Score    float64 `json:"score"`
	Semantic float64 `json:"semantic"`
	Lexical  float64 `json:"lexical"`
	// MatchedKeywords are the job keywords found in the claim text,
	// used by the selector's diversity penalty and by the trace.
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// SelectedClaim is one selector pick: the claim, the score it was picked at,
// and the text that will be displayed (the original until a rewrite is
// accepted).
type SelectedClaim struct {
	Claim       *Claim  `json:"claim"`
	Score       float64 `json:"score"`
	DisplayText string  `json:"display_text"`
}

// SelectionResult is the ordered selector output per section. Invariants:
// no duplicate claim identity within a section, per-section count within the
// active budget.
type SelectionResult struct {
	Sections map[Section][]SelectedClaim `json:"sections"`
	Compact  bool                        `json:"compact"`
}

// Count returns the number of selected claims in a section.
func (r *SelectionResult) Count(section Section) int {
	return len(r.Sections[section])
}

// Total returns the number of selected claims across all sections.
func (r *SelectionResult) Total() int {
	total := 0
	for _, claims := range r.Sections {
		total += len(claims)
	}
	return total
}
