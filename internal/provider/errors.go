package provider

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ErrUnauthorized is wrapped by transport errors for 401 and 403 responses.
var ErrUnauthorized = errors.New("unauthorized")

// ErrEmptyResponse is returned when the server answers without choices.
var ErrEmptyResponse = errors.New("empty response")

// TransportError describes a failed call to the completion API.
type TransportError struct {
	Op         string // "complete", "list models"
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError wraps err, extracting the HTTP status from go-openai
// error types and tagging auth failures with ErrUnauthorized.
func newTransportError(op string, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	status := statusCode(err)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		err = fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return &TransportError{Op: op, StatusCode: status, Err: err}
}

// statusCode returns the HTTP status carried by err, or 0.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
