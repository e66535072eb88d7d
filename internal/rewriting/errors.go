package rewriting

import "fmt"

// Error represents a rewriting configuration failure, such as an unreadable
// equivalence table. Rewrite-call failures are never errors; they degrade to
// keeping the original text.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rewriting: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rewriting: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
