package config

import "fmt"

// ValidationError represents an invalid configuration value
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	msg := "config error"
	if e.Field != "" {
		msg = fmt.Sprintf("config error: '%s'", e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
