// Package scrape collects article listings from news sites, either over plain
// HTTP or through a headless browser, and folds them into the article store.
package scrape

import "fmt"

// ScrapeError represents a failed scrape of one source
type ScrapeError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ScrapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scrape %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("scrape %s: %s", e.Source, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Cause
}
