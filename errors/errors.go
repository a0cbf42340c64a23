package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
//
// Message is safe to show to the end user. Internal detail (tool stderr,
// upstream response bodies) belongs in Details or Cause and is only logged.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Pipeline Error Constructors ---

// Extraction creates a new AppError for a failed audio extraction or split.
func Extraction(cause error) *AppError {
	return &AppError{
		Code: ErrCodeExtraction, Message: "Could not extract audio from the video. The file may be damaged or use an unsupported codec.",
		Cause: cause,
	}
}

// Transcription creates a new AppError for a failed transcription. When the
// cause is itself an AppError its code is kept as the "reason" detail.
func Transcription(cause error) *AppError {
	e := &AppError{
		Code: ErrCodeTranscription, Message: "Could not transcribe the audio. Please try again later.",
		Cause: cause,
	}
	if inner, ok := AsAppError(cause); ok {
		e.WithDetail("reason", string(inner.Code))
	}
	return e
}

// Format creates a new AppError for a transcript that cannot be rendered.
func Format(reason string) *AppError {
	return &AppError{
		Code: ErrCodeFormat, Message: "Could not build the transcript file.",
		Details: map[string]any{"reason": reason},
	}
}

// ToolMissing creates a new AppError for a media binary that is not installed.
func ToolMissing(tool string) *AppError {
	return &AppError{
		Code: ErrCodeToolMissing, Message: fmt.Sprintf("%s is not installed on the server. Video processing is unavailable.", tool),
		Details: map[string]any{"tool": tool},
	}
}

// --- Input Error Constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// TooLarge creates a new AppError for a file above the size limit.
func TooLarge(sizeBytes int64, limitMB int) *AppError {
	return &AppError{
		Code:    ErrCodeTooLarge,
		Message: fmt.Sprintf("The video is too large. Maximum size is %d MB.\nYour video is %.1f MB.", limitMB, float64(sizeBytes)/1024/1024),
		Details: map[string]any{"size_bytes": sizeBytes, "limit_mb": limitMB},
	}
}

// UnsupportedMedia creates a new AppError for a non-video submission.
func UnsupportedMedia(mimeType string) *AppError {
	details := make(map[string]any)
	if mimeType != "" {
		details["mime_type"] = mimeType
	}
	return &AppError{
		Code: ErrCodeUnsupportedMedia, Message: "Please send a video file.",
		Details: details,
	}
}

// --- Upstream Error Constructors ---

// ServiceUnavailable creates a new AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// RateLimited creates a new AppError for an upstream rate limit.
func RateLimited(service string) *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// Unauthorized creates a new AppError for rejected upstream credentials.
func Unauthorized(service string) *AppError {
	return &AppError{
		Code: ErrCodeUnauthorized, Message: fmt.Sprintf("The %s rejected the configured credentials.", service),
		Details: map[string]any{"service": service},
	}
}

// ExternalServiceError creates a new AppError for an error from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		Retryable: true,
		Details:   map[string]any{"service": service}, Cause: cause,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again.",
		Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether the outermost AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

