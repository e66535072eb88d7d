package trace

import "fmt"

// Error represents a trace assembly or persistence failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("trace: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("trace: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
