package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline errors
const (
	// ErrCodeExtraction indicates ffmpeg could not produce audio from the input video.
	ErrCodeExtraction ErrorCode = "EXTRACTION_FAILED"
	// ErrCodeTranscription indicates the speech-to-text step failed.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeFormat indicates a transcript could not be rendered.
	ErrCodeFormat ErrorCode = "FORMAT_INVALID"
	// ErrCodeToolMissing indicates a required media binary is not installed.
	ErrCodeToolMissing ErrorCode = "TOOL_MISSING"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeTooLarge indicates the submitted file exceeds the configured size limit.
	ErrCodeTooLarge ErrorCode = "TOO_LARGE"
	// ErrCodeUnsupportedMedia indicates the submitted file is not a video.
	ErrCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	// ErrCodeMissingField indicates a required configuration field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Upstream errors
const (
	// ErrCodeServiceUnavailable indicates an upstream service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the upstream rejected the call for rate reasons.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeUnauthorized indicates the upstream rejected our credentials.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeExternalService indicates an unclassified upstream failure.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// ErrCodeInternal indicates an unexpected internal failure.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
