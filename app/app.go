// Package app wires configuration into a running service.
package app

import (
	"context"
	"fmt"

	"github.com/kbukum/clipscribe/bootstrap"
	"github.com/kbukum/clipscribe/bot"
	"github.com/kbukum/clipscribe/component"
	"github.com/kbukum/clipscribe/httpclient"
	"github.com/kbukum/clipscribe/job"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/media"
	"github.com/kbukum/clipscribe/observability"
	"github.com/kbukum/clipscribe/process"
	"github.com/kbukum/clipscribe/server"
	"github.com/kbukum/clipscribe/session"
	"github.com/kbukum/clipscribe/transcription"
	"github.com/kbukum/clipscribe/transcription/openai"
	"github.com/kbukum/clipscribe/transcription/whisper"
	"github.com/kbukum/clipscribe/version"
	"github.com/kbukum/clipscribe/workspace"
)

// Build assembles the service on a bootstrap.App. Components are registered
// so that telemetry starts first and stops last, and the bot starts last and
// stops first, draining its requests while everything else is still up.
func Build(cfg *Config, api bot.API, opts ...bootstrap.Option) (*bootstrap.App[*Config], error) {
	opts = append([]bootstrap.Option{bootstrap.WithGracefulTimeout(cfg.GracefulTimeout)}, opts...)
	a, err := bootstrap.NewApp(cfg, version.Get().Short(), opts...)
	if err != nil {
		return nil, err
	}
	log := a.Logger.WithComponent("app")

	runner := process.NewExec(cfg.Process)
	extractor := media.NewExtractor(runner, cfg.Media)
	chunker := media.NewChunker(runner, cfg.Media)

	provider, language, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	transcriber := transcription.NewTranscriber(provider, cfg.Transcription, language)

	workspaces, err := workspace.NewManager(cfg.Workspace)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter(ServiceName))
	if err != nil {
		return nil, err
	}

	userAgent := map[string]string{"User-Agent": version.UserAgent()}
	downloader, err := httpclient.New(httpclient.Config{Headers: userAgent})
	if err != nil {
		return nil, err
	}

	telegram, err := bot.New(bot.Deps{
		API:           api,
		Sessions:      session.NewStore(cfg.Session),
		Processor:     job.NewProcessor(extractor, chunker, transcriber, workspaces, metrics),
		Downloader:    downloader,
		Preflight:     extractor.Available,
		ChunkDuration: cfg.Media.ChunkDuration,
		PollTimeout:   cfg.Telegram.PollTimeout,
	}, cfg.Bot)
	if err != nil {
		return nil, err
	}

	components := []component.Component{
		newTelemetry(cfg),
		newJanitor(workspaces, cfg.Workspace, a.Logger),
		// a missing ffmpeg is reported to users per video rather than failing startup
		component.NewProbe("ffmpeg", func(context.Context) error { return extractor.Available() }).
			Optional().
			WithDescription(component.Description{
				Type:    "tool",
				Details: fmt.Sprintf("%s chunk=%s bitrate=%s", cfg.Media.FFmpegPath, cfg.Media.ChunkDuration, cfg.Media.AudioBitrate),
			}),
		component.NewProbe("transcription", func(ctx context.Context) error {
			if !provider.IsAvailable(ctx) {
				return fmt.Errorf("%s backend unreachable", provider.Name())
			}
			return nil
		}).Optional().CacheFor(cfg.Transcription.BreakerTimeout).
			WithDescription(component.Description{
				Type:    "transcription",
				Details: fmt.Sprintf("backend=%s attempts=%d", provider.Name(), cfg.Transcription.MaxAttempts),
			}),
	}
	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, a.Logger)
		srv.ApplyDefaults(cfg.Name, a.Components.HealthAll)
		components = append(components, server.NewComponent(srv))
	}
	components = append(components, telegram)

	for _, c := range components {
		if err := a.RegisterComponent(c); err != nil {
			return nil, err
		}
	}
	a.OnReady(func(context.Context) error {
		log.Info("accepting videos", logger.Fields(
			"backend", provider.Name(),
			"max_video_mb", cfg.MaxVideoSizeMB,
			"chunk", cfg.Media.ChunkDuration.String(),
		))
		return nil
	})
	return a, nil
}

func newProvider(cfg *Config) (transcription.Provider, string, error) {
	registry := transcription.NewRegistry()
	registry.Register(openai.ProviderName, openai.Factory(cfg.OpenAI))
	registry.Register(whisper.ProviderName, whisper.Factory(cfg.Whisper))

	provider, err := registry.Create(cfg.Transcription.Backend)
	if err != nil {
		return nil, "", err
	}
	language := cfg.OpenAI.Language
	if cfg.Transcription.Backend == whisper.ProviderName {
		language = cfg.Whisper.Language
	}
	return provider, language, nil
}

// telemetry installs the OTLP exporters for the lifetime of the app.
type telemetry struct {
	cfg      observability.Config
	env      string
	shutdown observability.Shutdown
}

func newTelemetry(cfg *Config) *telemetry {
	return &telemetry{cfg: cfg.Observability, env: cfg.Environment}
}

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, t.cfg, observability.Identity{Service: ServiceName, Version: version.Version, Environment: t.env})
	if err != nil {
		return err
	}
	t.shutdown = shutdown
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

func (t *telemetry) Health(context.Context) component.Health {
	h := component.Health{Name: t.Name(), Status: component.StatusHealthy}
	if !t.cfg.Enabled {
		h.Message = "export disabled"
	}
	return h
}

func (t *telemetry) Describe() component.Description {
	details := "disabled"
	if t.cfg.Enabled {
		details = fmt.Sprintf("otlp http %s every %s", t.cfg.Endpoint, t.cfg.Interval)
	}
	return component.Description{Name: "Telemetry", Type: "observability", Details: details}
}
