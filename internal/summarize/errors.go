// Package summarize turns a broadcast transcript into a sectioned markdown digest
// with a chat model, one token-bounded chunk at a time.
package summarize

import "fmt"

// SummaryError represents a failed summarization step
type SummaryError struct {
	Step    string
	Message string
	Cause   error
}

func (e *SummaryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarize %s: %s: %v", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("summarize %s: %s", e.Step, e.Message)
}

func (e *SummaryError) Unwrap() error {
	return e.Cause
}
