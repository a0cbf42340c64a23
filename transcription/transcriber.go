package transcription

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/media"
	"github.com/kbukum/clipscribe/observability"
	"github.com/kbukum/clipscribe/resilience"
	"github.com/kbukum/clipscribe/transcript"
)

const promptTailChars = 200

// Progress is told which chunk (1-based) of how many is about to be sent.
type Progress func(part, total int)

// Transcriber sends chunks to a Provider sequentially and merges the results.
type Transcriber struct {
	provider Provider
	cfg      Config
	language string
	breaker  *resilience.CircuitBreaker
	log      *logger.Logger
}

// NewTranscriber creates a Transcriber. language may be empty for detection.
func NewTranscriber(p Provider, cfg Config, language string) *Transcriber {
	cfg.ApplyDefaults()
	log := logger.WithComponent("transcription")
	return &Transcriber{
		provider: p,
		cfg:      cfg,
		language: language,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        p.Name(),
			MaxFailures: cfg.BreakerFailures,
			Timeout:     cfg.BreakerTimeout,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("transcription circuit changed", logger.Fields("backend", name, "from", from.String(), "to", to.String()))
			},
		}),
		log: log,
	}
}

// Provider returns the backend in use.
func (t *Transcriber) Provider() Provider { return t.provider }

// Transcribe transcribes chunks in index order. Each segment is shifted by
// the summed duration of the preceding chunks; segments with blank text are
// dropped. Any failed chunk, or a chunk left with no segments once blanks are
// dropped, fails the whole call with TRANSCRIPTION_FAILED. With KeepPartial
// the completed prefix is returned, marked Partial, alongside that error.
func (t *Transcriber) Transcribe(ctx context.Context, chunks []media.Chunk, progress Progress) (*transcript.Transcript, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
	defer span.End()
	span.SetAttributes(attribute.Int("chunks", len(chunks)), attribute.String("backend", t.provider.Name()))

	log := t.log.WithContext(ctx)
	result := &transcript.Transcript{}
	var offset time.Duration
	var prompt string

	for i, chunk := range chunks {
		if progress != nil {
			progress(i+1, len(chunks))
		}

		resp, err := t.transcribeChunk(ctx, chunk, prompt)
		var segments []transcript.Segment
		if err == nil {
			segments = shift(resp.Segments, offset)
			if len(segments) == 0 {
				err = fmt.Errorf("chunk %d returned no segments with text", chunk.Index)
			}
		}
		if err != nil {
			observability.SetSpanError(ctx, err)
			log.Error("chunk transcription failed", logger.Fields(logger.FieldChunk, chunk.Index, "of", len(chunks), logger.FieldError, err.Error()))
			appErr := errors.Transcription(err).WithDetails(map[string]any{"chunk": chunk.Index, "chunks": len(chunks)})
			if t.cfg.KeepPartial && i > 0 {
				result.Partial = true
				return result, appErr
			}
			return nil, appErr
		}

		if result.Language == "" {
			result.Language = resp.Language
		}
		result.Segments = append(result.Segments, segments...)
		offset += chunk.Duration
		result.Duration = offset
		if t.cfg.PromptCarryover {
			prompt = tail(resp.Text, promptTailChars)
		}
		log.Debug("chunk transcribed", logger.Fields(logger.FieldChunk, chunk.Index, "segments", len(resp.Segments)))
	}

	// a segment can overrun its chunk; keep the merged start times non-decreasing
	slices.SortStableFunc(result.Segments, func(a, b transcript.Segment) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return result, nil
}

func (t *Transcriber) transcribeChunk(ctx context.Context, chunk media.Chunk, prompt string) (*Response, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanChunk)
	defer span.End()
	span.SetAttributes(attribute.Int("chunk.index", chunk.Index), attribute.Float64("chunk.duration_s", chunk.Duration.Seconds()))

	retry := resilience.RetryConfig{
		MaxAttempts:    t.cfg.MaxAttempts,
		InitialBackoff: t.cfg.InitialBackoff,
		BackoffFactor:  2,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			t.log.Warn("retrying chunk", logger.Fields(logger.FieldChunk, chunk.Index, "attempt", attempt, "backoff", backoff.String(), logger.FieldError, err.Error()))
		},
	}
	return resilience.Retry(ctx, retry, func(int) (*Response, error) {
		return resilience.Call(t.breaker, func() (*Response, error) {
			return t.provider.Transcribe(ctx, Request{AudioPath: chunk.Path, Language: t.language, Prompt: prompt})
		})
	})
}

// shift converts chunk-local segments to the full timeline, dropping blank
// text and ordering by start.
func shift(segments []Segment, offset time.Duration) []transcript.Segment {
	out := make([]transcript.Segment, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out = append(out, transcript.Segment{
			Start: offset + seconds(seg.Start),
			End:   offset + seconds(seg.End),
			Text:  text,
		})
	}
	slices.SortStableFunc(out, func(a, b transcript.Segment) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s*1e6)) * time.Microsecond
}

func tail(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[len(r)-n:])
}
