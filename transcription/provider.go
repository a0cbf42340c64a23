package transcription

import (
	"context"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	// Name identifies the backend in logs and configuration.
	Name() string
	// IsAvailable reports whether the backend can currently be reached.
	IsAvailable(ctx context.Context) bool
	// Transcribe sends one audio file and returns chunk-local segments.
	// Errors are *errors.AppError values classified for retry.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
