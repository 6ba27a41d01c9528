package pipeline

import (
	"fmt"

	"github.com/jonathan/news-digest/internal/manifest"
)

// StageError records which stage of which language failed.
type StageError struct {
	Lang  string
	Stage manifest.Stage
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline error: %s at %s: %v", e.Lang, e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
