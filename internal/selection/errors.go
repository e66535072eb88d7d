package selection

import "fmt"

// Error represents a failure during claim selection.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("selection: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("selection: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
