package corpus

import "fmt"

// IntegrityError reports an evidence-integrity violation. It is fatal: the
// run refuses to continue with a claim that cannot be traced to a source.
type IntegrityError struct {
	ClaimID string
	Message string
}

func (e *IntegrityError) Error() string {
	if e.ClaimID != "" {
		return fmt.Sprintf("evidence integrity: claim %s: %s", e.ClaimID, e.Message)
	}
	return fmt.Sprintf("evidence integrity: %s", e.Message)
}
