package phases

import "fmt"

// TemplateError indicates a phase prompt could not be built because a
// required input was absent. This is a programming/config error: fail
// fast, never retried.
type TemplateError struct {
	Phase   Phase
	Missing string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompt template error in %s: missing %s", e.Phase, e.Missing)
}

// LLMError represents a transport or response failure from the LLM
// provider during a phase. Retry policy is an orchestrator concern, not
// the phase's.
type LLMError struct {
	Phase   Phase
	Timeout bool
	Cause   error
}

func (e *LLMError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("LLM timeout in phase %s: %v", e.Phase, e.Cause)
	}
	return fmt.Sprintf("LLM provider error in phase %s: %v", e.Phase, e.Cause)
}

func (e *LLMError) Unwrap() error {
	return e.Cause
}
