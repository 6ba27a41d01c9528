package prompts

import "fmt"

// PromptError reports a missing or unreadable prompt.
type PromptError struct {
	File  string
	Key   string
	Cause error
}

func (e *PromptError) Error() string {
	switch {
	case e.Key == "" && e.Cause != nil:
		return fmt.Sprintf("failed to read prompt file %s: %v", e.File, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("prompt %s/%s: %v", e.File, e.Key, e.Cause)
	default:
		return fmt.Sprintf("prompt key %q not found in %s", e.Key, e.File)
	}
}

func (e *PromptError) Unwrap() error {
	return e.Cause
}
