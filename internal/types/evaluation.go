package types

// EvaluationReport quantifies how well the final output text covers the job
// keyword set. It is derived data: recomputable at any time from the keyword
// set and the final text, never mutated.
type EvaluationReport struct {
	// Coverage is the fraction of keyword terms present in the final text,
	// in [0,1].
	Coverage float64 `json:"coverage"`
	// MissingKeywords lists absent terms, highest weight first, ties broken
	// alphabetically.
	MissingKeywords []string `json:"missing_keywords"`
	// Suggestions are human-readable hints that only ever point at existing,
	// unselected evidence, never at content to invent.
	Suggestions []string `json:"suggestions"`
}
