package auditlogs

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeResponseParse indicates a response body that could not be decoded as JSON
	ErrorTypeResponseParse ErrorType = "response_parse_error"
	// ErrorTypeInvalidRequest indicates a request that could not be built
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
)

var (
	// ErrEmptyToken is returned by New when no token is supplied.
	ErrEmptyToken = errors.New("auditlogs: token is required")

	// ErrSessionClosed is returned by Session.Do after Close.
	ErrSessionClosed = errors.New("auditlogs: session is closed")
)

// APIError is the error type raised for Audit Logs API failures that are
// not transport errors. Transport errors are returned unwrapped.
type APIError struct {
	Type    ErrorType
	Message string
	// Response holds what was received; Body is empty when decoding failed.
	Response *Response
	// Original error for debugging
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Response != nil && e.Response.URL != "" {
		return fmt.Sprintf("%s: %s (url: %s, status: %d)", e.Type, e.Message, e.Response.URL, e.Response.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError extracts *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// newResponseParseError wraps a JSON decode failure together with the raw response.
func newResponseParseError(resp *Response, err error) *APIError {
	return &APIError{
		Type:     ErrorTypeResponseParse,
		Message:  "failed to parse the response body: " + err.Error(),
		Response: resp,
		Err:      err,
	}
}

// newInvalidRequestError reports a request that could not be constructed.
func newInvalidRequestError(message string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Message: message,
		Err:     err,
	}
}
