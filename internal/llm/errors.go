package llm

import "fmt"

// APICallError represents a failed call to a model provider
type APICallError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s API call failed: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s API call failed: %s", e.Provider, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// EmptyResponseError is returned when a provider answers without usable text
type EmptyResponseError struct {
	Provider Provider
	Reason   string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s returned no usable content: %s", e.Provider, e.Reason)
}
