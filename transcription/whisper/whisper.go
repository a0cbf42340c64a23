// Package whisper implements transcription.Provider against a
// faster-whisper HTTP sidecar.
package whisper

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/httpclient"
	"github.com/kbukum/clipscribe/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	serviceName = "whisper sidecar"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperTimeout = 120 * time.Second
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL string `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	// APIKey is sent as a bearer token for sidecars behind an auth proxy.
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultWhisperTimeout
	}
}

// Provider implements transcription.Provider using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout, BearerToken: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a transcription.Factory building a Provider from cfg.
func Factory(cfg Config) transcription.Factory {
	return func() (transcription.Provider, error) {
		return NewProvider(cfg)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil
}

// Transcribe uploads the audio file to the sidecar.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	fields := map[string]string{"model": p.cfg.Model}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang != "" {
		fields["language"] = lang
	}
	if req.Prompt != "" {
		fields["initial_prompt"] = req.Prompt
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files:  []httpclient.FileField{httpclient.FileFromPath("audio", req.AudioPath, "audio/mpeg")},
		},
	})
	if err != nil {
		var httpErr *httpclient.Error
		if stderrors.As(err, &httpErr) {
			return nil, httpErr.ToAppError(serviceName)
		}
		return nil, errors.Internal(err)
	}

	var result whisperResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.ExternalServiceError(serviceName, err).WithDetail("reason", "malformed response")
	}
	return result.toResponse(), nil
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r *whisperResponse) toResponse() *transcription.Response {
	segments := make([]transcription.Segment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = transcription.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}

	duration := r.Duration
	if duration == 0 && len(r.Segments) > 0 {
		duration = r.Segments[len(r.Segments)-1].End
	}
	return &transcription.Response{
		Text:     r.Text,
		Segments: segments,
		Duration: duration,
		Language: r.Language,
	}
}
