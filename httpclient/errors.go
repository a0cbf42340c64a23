package httpclient

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/clipscribe/errors"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	ErrCodeTimeout ErrorCode = iota
	ErrCodeConnection
	ErrCodeAuth
	ErrCodeNotFound
	ErrCodeRateLimit
	ErrCodeValidation
	ErrCodeServer
	ErrCodeTooLarge
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	case ErrCodeTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// Error is a structured HTTP client error.
type Error struct {
	// StatusCode is 0 for connection-level errors.
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ToAppError maps the error onto the application taxonomy for service.
func (e *Error) ToAppError(service string) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch e.Code {
	case ErrCodeTimeout:
		appErr = apperrors.Timeout(service)
	case ErrCodeConnection:
		appErr = apperrors.ServiceUnavailable(service)
	case ErrCodeAuth:
		appErr = apperrors.Unauthorized(service)
	case ErrCodeRateLimit:
		appErr = apperrors.RateLimited(service)
	case ErrCodeServer:
		appErr = apperrors.ExternalServiceError(service, nil)
	default:
		appErr = apperrors.InvalidInput("", e.Message).WithDetail("service", service)
	}
	appErr.Cause = e
	if e.StatusCode > 0 {
		appErr.WithDetail("status", e.StatusCode)
	}
	return appErr
}

func newTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Retryable: true, Err: err}
}

func newConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Retryable: true, Err: err}
}

func newValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode, Message: fmt.Sprintf("HTTP %d", statusCode), Body: body}
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == 401 || statusCode == 403:
		e.Code = ErrCodeAuth
	case statusCode == 404:
		e.Code = ErrCodeNotFound
	case statusCode == 413:
		e.Code = ErrCodeTooLarge
	case statusCode == 429:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case statusCode >= 400 && statusCode < 500:
		e.Code = ErrCodeValidation
	case statusCode >= 500:
		e.Code, e.Retryable = ErrCodeServer, true
	default:
		e.Code = ErrCodeServer
	}
	return e
}

// IsRetryable checks if an error is a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
