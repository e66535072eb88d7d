package types

import "time"

// TraceEntry is one selected claim's line in the trace: what was shown, where
// it came from, and what the rewrite stage decided about it.
type TraceEntry struct {
	Section     Section  `json:"section"`
	ClaimID     string   `json:"claim_id"`
	Text        string   `json:"text"`
	DisplayText string   `json:"display_text"`
	SourceIDs   []string `json:"source_ids"`
	Score       float64  `json:"score"`
	// RewriteDecision is empty when the rewrite stage did not run.
	RewriteDecision RewriteDecision `json:"rewrite_decision,omitempty"`
	RewriteReason   string          `json:"rewrite_reason,omitempty"`
}

// Trace is the append-only record of a full pipeline run, written once by the
// orchestrator after the final stage and never mutated afterward. It is the
// system's only machine-checkable proof that nothing in the output was
// fabricated.
type Trace struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	JobTitle   string     `json:"job_title,omitempty"`
	JobCompany string     `json:"job_company,omitempty"`
	Keywords   KeywordSet `json:"job_keywords"`

	// IndexBackend names the similarity backend that actually served the run;
	// IndexFallback is set when the configured backend was unavailable and the
	// run degraded to token overlap.
	IndexBackend  string `json:"index_backend"`
	IndexFallback bool   `json:"index_fallback"`

	Entries    []TraceEntry     `json:"entries"`
	Rewrites   []RewriteAttempt `json:"rewrites,omitempty"`
	Evaluation EvaluationReport `json:"evaluation"`

	// CoverLetter holds the guarded cover-letter text when one was generated.
	CoverLetter string `json:"cover_letter,omitempty"`
}
