package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	ErrorTypeModelError     ErrorType = "model_error"
	ErrorTypeServerError    ErrorType = "server_error"
	ErrorTypeNotFound       ErrorType = "not_found"
)

// APIError is a structured API error carrying one of the four error types.
// Errors are propagated outward unchanged and rendered as an ErrorResponse
// envelope only at the transport boundary.
type APIError struct {
	Message string    `json:"message"`
	Type    ErrorType `json:"type"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level
// error envelope: {"error": {"message": ..., "type": ...}}.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for malformed client input.
func NewInvalidRequestError(message string) *APIError {
	return &APIError{Type: ErrorTypeInvalidRequest, Message: message}
}

// NewModelError creates an APIError for a generation-time fault reported
// by the backend.
func NewModelError(message string) *APIError {
	return &APIError{Type: ErrorTypeModelError, Message: message}
}

// NewServerError creates an APIError for internal failures: network errors,
// misconfiguration, and anything else without a more specific type.
func NewServerError(message string) *APIError {
	return &APIError{Type: ErrorTypeServerError, Message: message}
}

// NewNotFoundError creates an APIError for unroutable requests.
func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}
