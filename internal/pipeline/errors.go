package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by NewClient when no credential is configured.
var ErrMissingAPIKey = errors.New("pipeline: missing API key")

// NetworkError indicates that the HTTP exchange with the completion endpoint
// could not complete. The submission is not retried.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError carries an error reported by the completion provider. Message is
// the provider's own text and is meant to be shown to the user as-is.
type APIError struct {
	Message    string
	Type       string
	Code       string
	StatusCode int
	// Raw is the JSON of the provider's error value.
	Raw string
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Type != "" {
		return fmt.Sprintf("api error (%s): %s", e.Type, e.Message)
	}
	return "api error: " + e.Message
}

// MalformedResponseError indicates a response that does not match the
// expected completion shape. No partial result is produced.
type MalformedResponseError struct {
	Reason string
	Body   string
}

func (e *MalformedResponseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "malformed response: " + e.Reason
}
