package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Base error types
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrTimeout          = errors.New("timeout")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConnectionFailed = errors.New("connection failed")
	ErrInternalError    = errors.New("internal error")
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConnection ErrorType = "connection"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeAPI        ErrorType = "api"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// UpstreamError is a structured error for calls to the reports API.
type UpstreamError struct {
	Type       ErrorType
	Op         string // Operation that failed (e.g., "fetch_sales")
	Endpoint   string // Path that was called
	Err        error  // Underlying error
	StatusCode int    // HTTP status code if applicable
	Timestamp  time.Time
	Retryable  bool
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed on %s (status %d): %v", e.Op, e.Endpoint, e.StatusCode, e.Err)
	}
	if e.Endpoint != "" {
		return fmt.Sprintf("%s failed on %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface
func (e *UpstreamError) Is(target error) bool {
	if target == nil {
		return false
	}

	switch target {
	case ErrNotFound:
		return e.Type == ErrorTypeNotFound
	case ErrUnauthorized, ErrForbidden:
		return e.Type == ErrorTypeAuth
	case ErrTimeout:
		return e.Type == ErrorTypeTimeout
	case ErrConnectionFailed:
		return e.Type == ErrorTypeConnection
	case ErrInvalidInput:
		if e.Type == ErrorTypeValidation {
			return true
		}
	}

	return errors.Is(e.Err, target)
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(errorType ErrorType, op, endpoint string, err error) *UpstreamError {
	return &UpstreamError{
		Type:      errorType,
		Op:        op,
		Endpoint:  endpoint,
		Err:       err,
		Timestamp: time.Now(),
		Retryable: isRetryable(errorType, err),
	}
}

// WithStatusCode adds HTTP status code to the error
func (e *UpstreamError) WithStatusCode(code int) *UpstreamError {
	e.StatusCode = code
	if code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout {
		e.Retryable = true
	} else if code >= 400 && code < 500 {
		e.Retryable = false
	}
	return e
}

// isRetryable determines if an error should be retried
func isRetryable(errorType ErrorType, err error) bool {
	switch errorType {
	case ErrorTypeConnection, ErrorTypeTimeout:
		return true
	case ErrorTypeAuth, ErrorTypeValidation, ErrorTypeNotFound:
		return false
	default: // ErrorTypeInternal, ErrorTypeAPI
		if err != nil {
			return !errors.Is(err, ErrInvalidInput) && !errors.Is(err, ErrForbidden)
		}
		return true
	}
}

// FromStatus classifies an unsuccessful HTTP response from the reports API.
func FromStatus(op, endpoint string, code int, err error) *UpstreamError {
	errorType := ErrorTypeAPI
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		errorType = ErrorTypeAuth
	case code == http.StatusNotFound:
		errorType = ErrorTypeNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		errorType = ErrorTypeValidation
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		errorType = ErrorTypeTimeout
	}
	return NewUpstreamError(errorType, op, endpoint, err).WithStatusCode(code)
}

// Helper functions

// WrapConnectionError wraps a connection error with context
func WrapConnectionError(op, endpoint string, err error) error {
	return NewUpstreamError(ErrorTypeConnection, op, endpoint, err)
}

// WrapTimeoutError wraps a deadline or client timeout with context
func WrapTimeoutError(op, endpoint string, err error) error {
	return NewUpstreamError(ErrorTypeTimeout, op, endpoint, err)
}

// WrapValidationError wraps a malformed payload with context
func WrapValidationError(op, endpoint string, err error) error {
	return NewUpstreamError(ErrorTypeValidation, op, endpoint, err)
}

// IsRetryableError checks if an error should be retried
func IsRetryableError(err error) bool {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Retryable
	}

	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnectionFailed)
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		if upErr.Type == ErrorTypeAuth {
			return true
		}
		if upErr.StatusCode == http.StatusUnauthorized || upErr.StatusCode == http.StatusForbidden {
			return true
		}
	}

	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// HTTPStatus maps an error to the status code the report server answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case IsAuthError(err), errors.Is(err, ErrConnectionFailed), errors.Is(err, ErrTimeout):
		return http.StatusBadGateway
	default:
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
