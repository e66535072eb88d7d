package types

// RewriteDecision is the guard's verdict on one proposed rewrite.
type RewriteDecision string

// Decision values recorded in the trace for every rewrite attempt.
const (
	// RewriteAccepted means the proposed text introduced nothing unsupported.
	RewriteAccepted RewriteDecision = "accepted"
	// RewriteReverted means the guard rejected the proposal and the original
	// text was retained.
	RewriteReverted RewriteDecision = "reverted"
	// RewriteSkipped means the external call failed and the original text was
	// used without a guard check.
	RewriteSkipped RewriteDecision = "skipped"
)

// RewriteAttempt records one guarded rewrite of a selected claim. The original
// text is always retained here regardless of the decision, so the audit trail
// survives an accepted rewrite.
type RewriteAttempt struct {
	ClaimID  string          `json:"claim_id"`
	Original string          `json:"original"`
	Proposed string          `json:"proposed,omitempty"`
	Decision RewriteDecision `json:"decision"`
	Reason   string          `json:"reason"`
}
