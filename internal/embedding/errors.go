package embedding

import "fmt"

// Error represents an embedding provider failure. The orchestrator
// treats it as fatal for the run: without a query vector there is no
// context to validate against.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
