// Package articles persists scraped article lists, one JSON array per source,
// newest first and keyed by URL.
package articles

import "fmt"

// StoreError represents a failure reading or writing an article file
type StoreError struct {
	Path    string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("article store %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("article store %s: %s", e.Path, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
