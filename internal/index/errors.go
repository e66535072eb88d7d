package index

import "fmt"

// BuildError represents a backend that could not be constructed or built.
type BuildError struct {
	Backend string
	Message string
	Cause   error
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("index build failed: backend %s: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("index build failed: backend %s: %s", e.Backend, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// SnapshotError represents a failure serializing or restoring index state.
type SnapshotError struct {
	Message string
	Cause   error
}

func (e *SnapshotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("index snapshot: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("index snapshot: %s", e.Message)
}

func (e *SnapshotError) Unwrap() error {
	return e.Cause
}
