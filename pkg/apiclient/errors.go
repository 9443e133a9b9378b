package apiclient

import "fmt"

// APIError is an error response from the admin API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("admin API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("admin API error (HTTP %d)", e.StatusCode)
}

// IsNotFound returns true if the endpoint or resource does not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}
