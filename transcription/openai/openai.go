// Package openai implements transcription.Provider with the OpenAI audio
// transcription API, requesting verbose_json so segment timestamps come back.
package openai

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/transcription"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	serviceName = "transcription service"

	defaultTimeout = 5 * time.Minute
)

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// BaseURL overrides the API root, e.g. for a compatible gateway.
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = goopenai.Whisper1
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.MissingField("openai.api_key")
	}
	return nil
}

// Provider implements transcription.Provider using go-openai.
type Provider struct {
	cfg    Config
	client *goopenai.Client
}

// NewProvider creates a new OpenAI transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Provider{cfg: cfg, client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

// Factory returns a transcription.Factory building a Provider from cfg.
func Factory(cfg Config) transcription.Factory {
	return func() (transcription.Provider, error) {
		return NewProvider(cfg)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the configured model can be looked up with
// the configured key.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.GetModel(ctx, p.cfg.Model)
	return err == nil
}

// Transcribe sends one audio file and returns its segments.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, errors.InvalidInput("file", "audio chunk is not readable").WithCause(err)
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	resp, err := p.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    p.cfg.Model,
		FilePath: req.AudioPath,
		Language: lang,
		Prompt:   req.Prompt,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []goopenai.TranscriptionTimestampGranularity{
			goopenai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return nil, classify(ctx, err)
	}

	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	return &transcription.Response{
		Text:     resp.Text,
		Segments: segments,
		Duration: resp.Duration,
		Language: resp.Language,
	}, nil
}

// classify maps go-openai errors onto the application taxonomy so the
// transcriber's retry policy can tell transient failures from fatal ones.
func classify(ctx context.Context, err error) *errors.AppError {
	if ctx.Err() != nil {
		return errors.Timeout("transcription").WithCause(err)
	}

	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case stderrors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case stderrors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	var appErr *errors.AppError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		appErr = errors.Unauthorized(serviceName)
	case status == http.StatusTooManyRequests:
		appErr = errors.RateLimited(serviceName)
	case status == http.StatusRequestTimeout:
		appErr = errors.Timeout("transcription")
	case status >= 500:
		appErr = errors.ExternalServiceError(serviceName, nil)
	case status >= 400:
		appErr = errors.InvalidInput("file", "rejected by the transcription service")
	case stderrors.Is(err, context.DeadlineExceeded):
		appErr = errors.Timeout("transcription")
	default:
		// no status: transport failure
		var netErr interface{ Timeout() bool }
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			appErr = errors.Timeout("transcription")
		} else {
			appErr = errors.ServiceUnavailable(serviceName)
		}
	}
	appErr.Cause = err
	if status > 0 {
		appErr.WithDetail("status", status)
	}
	return appErr
}
