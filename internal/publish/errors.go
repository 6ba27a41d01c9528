// Package publish posts finished digests to Substack by driving the web
// editor in Chrome.
package publish

import "fmt"

// PublishError represents a failed post.
type PublishError struct {
	Step    string
	Message string
	Cause   error
}

func (e *PublishError) Error() string {
	prefix := "publish error"
	if e.Step != "" {
		prefix = fmt.Sprintf("publish error (%s)", e.Step)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}
