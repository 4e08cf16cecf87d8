package core

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeInvalidConfig indicates a missing or malformed user configuration (400)
	ErrorTypeInvalidConfig ErrorType = "invalid_config_error"
	// ErrorTypeUpstream indicates a metadata source failure (502)
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeNotFound indicates a not found error (404)
	ErrorTypeNotFound ErrorType = "not_found_error"
)

// AddonError is the base error type for all addon errors
type AddonError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *AddonError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *AddonError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *AddonError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeInvalidConfig:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *AddonError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewInvalidConfigError creates a new invalid configuration error (400)
func NewInvalidConfigError(message string, err error) *AddonError {
	return &AddonError{
		Type:       ErrorTypeInvalidConfig,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewUpstreamError creates a new upstream error for a metadata source failure
func NewUpstreamError(statusCode int, message string, err error) *AddonError {
	return &AddonError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string) *AddonError {
	return &AddonError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}
