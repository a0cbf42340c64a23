package transcription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/media"
)

// scriptedProvider answers calls from a queue keyed by audio path.
type scriptedProvider struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []Request
}

type reply struct {
	resp *Response
	err  error
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) IsAvailable(context.Context) bool { return true }

func (p *scriptedProvider) Transcribe(_ context.Context, req Request) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	q := p.replies[req.AudioPath]
	if len(q) == 0 {
		return &Response{Segments: []Segment{{Start: 0, End: 1, Text: "default"}}}, nil
	}
	r := q[0]
	if len(q) > 1 {
		p.replies[req.AudioPath] = q[1:]
	}
	return r.resp, r.err
}

func chunksOf(n int, d time.Duration) []media.Chunk {
	chunks := make([]media.Chunk, n)
	for i := range chunks {
		chunks[i] = media.Chunk{Index: i, Start: time.Duration(i) * d, Duration: d, Path: "chunk" + string(rune('0'+i))}
	}
	return chunks
}

func fastConfig() Config {
	return Config{InitialBackoff: time.Millisecond}
}

func TestTranscribe_OffsetsAcrossChunks(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk0": {{resp: &Response{Language: "english", Segments: []Segment{{Start: 0, End: 4.9, Text: " Hello there. "}}}}},
		"chunk1": {{resp: &Response{Segments: []Segment{{Start: 2, End: 5, Text: "Second part"}, {Start: 0.5, End: 1, Text: "earlier"}}}}},
	}}
	var progress [][2]int
	tr := NewTranscriber(p, fastConfig(), "")
	got, err := tr.Transcribe(context.Background(), chunksOf(2, 300*time.Second), func(part, total int) {
		progress = append(progress, [2]int{part, total})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got.Segments))
	}
	if got.Segments[0].Text != "Hello there." || got.Segments[0].End != 4900*time.Millisecond {
		t.Errorf("unexpected first segment %+v", got.Segments[0])
	}
	if got.Segments[1].Text != "earlier" || got.Segments[1].Start != 300500*time.Millisecond {
		t.Errorf("expected chunk-local ordering by start, got %+v", got.Segments[1])
	}
	if got.Segments[2].Start != 302*time.Second || got.Segments[2].End != 305*time.Second {
		t.Errorf("expected [302s,305s], got %+v", got.Segments[2])
	}
	if got.Duration != 600*time.Second || got.Language != "english" || got.Partial {
		t.Errorf("unexpected transcript metadata %+v", got)
	}
	if len(progress) != 2 || progress[1] != [2]int{2, 2} {
		t.Errorf("expected progress 1/2, 2/2, got %v", progress)
	}
}

func TestTranscribe_FortyMinutesInTenMinuteChunks(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{}}
	for i := 0; i < 4; i++ {
		p.replies["chunk"+string(rune('0'+i))] = []reply{{resp: &Response{Segments: []Segment{{Start: 10, End: 20, Text: "x"}}}}}
	}
	got, err := NewTranscriber(p, fastConfig(), "").Transcribe(context.Background(), chunksOf(4, 10*time.Minute), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(p.calls))
	}
	if got.Duration != 40*time.Minute {
		t.Fatalf("expected 40m transcript, got %v", got.Duration)
	}
	for i, seg := range got.Segments {
		want := time.Duration(i)*10*time.Minute + 10*time.Second
		if seg.Start != want {
			t.Errorf("segment %d: expected start %v, got %v", i, want, seg.Start)
		}
	}
}

func TestTranscribe_DropsBlankSegments(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk0": {{resp: &Response{Segments: []Segment{{Start: 0, End: 1, Text: "  "}, {Start: 1, End: 2, Text: "words"}}}}},
	}}
	got, err := NewTranscriber(p, fastConfig(), "").Transcribe(context.Background(), chunksOf(1, time.Minute), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Segments) != 1 || got.Segments[0].Text != "words" {
		t.Fatalf("expected only the non-blank segment, got %+v", got.Segments)
	}
}

func TestTranscribe_NoSegmentsFails(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk1": {{resp: &Response{}}},
	}}
	got, err := NewTranscriber(p, fastConfig(), "").Transcribe(context.Background(), chunksOf(3, time.Minute), nil)
	if !errors.HasCode(err, errors.ErrCodeTranscription) {
		t.Fatalf("expected TRANSCRIPTION_FAILED, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected partial results to be discarded, got %+v", got)
	}
	if len(p.calls) != 2 {
		t.Errorf("expected processing to stop at the failing chunk, got %d calls", len(p.calls))
	}
}

func TestTranscribe_BlankOnlyChunkFails(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk1": {{resp: &Response{Segments: []Segment{{Start: 0, End: 1, Text: " "}, {Start: 1, End: 2, Text: "\n\t"}}}}},
	}}
	got, err := NewTranscriber(p, fastConfig(), "").Transcribe(context.Background(), chunksOf(2, time.Minute), nil)
	if !errors.HasCode(err, errors.ErrCodeTranscription) {
		t.Fatalf("expected TRANSCRIPTION_FAILED, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no transcript, got %+v", got)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["chunk"] != 1 {
		t.Errorf("expected failing chunk 1, got %v", appErr.Details["chunk"])
	}
}

func TestTranscribe_KeepPartial(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk2": {{err: errors.InvalidInput("file", "corrupt audio")}},
	}}
	cfg := fastConfig()
	cfg.KeepPartial = true
	got, err := NewTranscriber(p, cfg, "").Transcribe(context.Background(), chunksOf(3, time.Minute), nil)
	if !errors.HasCode(err, errors.ErrCodeTranscription) {
		t.Fatalf("expected TRANSCRIPTION_FAILED, got %v", err)
	}
	if got == nil || !got.Partial || len(got.Segments) != 2 || got.Duration != 2*time.Minute {
		t.Fatalf("expected 2-chunk partial transcript, got %+v", got)
	}
}

func TestTranscribe_RetriesTransientErrors(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk0": {
			{err: errors.RateLimited("openai")},
			{err: errors.ServiceUnavailable("openai")},
			{resp: &Response{Segments: []Segment{{Start: 0, End: 1, Text: "ok"}}}},
		},
	}}
	got, err := NewTranscriber(p, fastConfig(), "").Transcribe(context.Background(), chunksOf(1, time.Minute), nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(p.calls) != 3 || got.Segments[0].Text != "ok" {
		t.Fatalf("expected 3 calls, got %d", len(p.calls))
	}
}

func TestTranscribe_NoRetryOnAuthError(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk0": {{err: errors.Unauthorized("openai")}},
	}}
	_, err := NewTranscriber(p, fastConfig(), "").Transcribe(context.Background(), chunksOf(2, time.Minute), nil)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeTranscription {
		t.Fatalf("expected TRANSCRIPTION_FAILED, got %v", err)
	}
	if appErr.Details["reason"] != string(errors.ErrCodeUnauthorized) {
		t.Errorf("expected reason UNAUTHORIZED, got %v", appErr.Details["reason"])
	}
	if len(p.calls) != 1 {
		t.Errorf("expected a single call, got %d", len(p.calls))
	}
}

func TestTranscribe_PromptCarryover(t *testing.T) {
	p := &scriptedProvider{replies: map[string][]reply{
		"chunk0": {{resp: &Response{Text: "the end of chunk zero", Segments: []Segment{{Start: 0, End: 1, Text: "a"}}}}},
	}}
	cfg := fastConfig()
	cfg.PromptCarryover = true
	if _, err := NewTranscriber(p, cfg, "en").Transcribe(context.Background(), chunksOf(2, time.Minute), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls[0].Prompt != "" || p.calls[1].Prompt != "the end of chunk zero" {
		t.Errorf("expected prompt carried into second chunk, got %q / %q", p.calls[0].Prompt, p.calls[1].Prompt)
	}
	if p.calls[1].Language != "en" {
		t.Errorf("expected language passed through, got %q", p.calls[1].Language)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("scripted", func() (Provider, error) { return &scriptedProvider{}, nil })
	p, err := r.Create("scripted")
	if err != nil || p.Name() != "scripted" {
		t.Fatalf("expected scripted provider, got %v, %v", p, err)
	}
	if _, err := r.Create("missing"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "scripted" {
		t.Errorf("unexpected names %v", names)
	}
}
