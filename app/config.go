package app

import (
	"fmt"
	"time"

	"github.com/kbukum/clipscribe/bot"
	"github.com/kbukum/clipscribe/config"
	"github.com/kbukum/clipscribe/media"
	"github.com/kbukum/clipscribe/observability"
	"github.com/kbukum/clipscribe/process"
	"github.com/kbukum/clipscribe/server"
	"github.com/kbukum/clipscribe/session"
	"github.com/kbukum/clipscribe/transcription"
	"github.com/kbukum/clipscribe/transcription/openai"
	"github.com/kbukum/clipscribe/transcription/whisper"
	"github.com/kbukum/clipscribe/validation"
	"github.com/kbukum/clipscribe/workspace"
)

// ServiceName names the service in logs, telemetry and the config resolver.
const ServiceName = "clipscribe"

// Config is the whole service configuration. It is built once at startup
// and treated as read-only afterwards.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Telegram bot.TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	// MaxVideoSizeMB is the largest video accepted, checked against the size
	// Telegram reports and again while downloading.
	MaxVideoSizeMB int `yaml:"max_video_size_mb" mapstructure:"max_video_size_mb" validate:"gte=1"`
	// GracefulTimeout bounds shutdown, including requests still running.
	GracefulTimeout time.Duration `yaml:"graceful_timeout" mapstructure:"graceful_timeout"`

	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	OpenAI        openai.Config        `yaml:"openai" mapstructure:"openai"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	Media         media.Config         `yaml:"media" mapstructure:"media"`
	Process       process.Config       `yaml:"process" mapstructure:"process"`
	Workspace     workspace.Config     `yaml:"workspace" mapstructure:"workspace"`
	Session       session.Config       `yaml:"session" mapstructure:"session"`
	Bot           bot.Config           `yaml:"bot" mapstructure:"bot"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	if c.MaxVideoSizeMB == 0 {
		c.MaxVideoSizeMB = 100
	}
	if c.GracefulTimeout == 0 {
		c.GracefulTimeout = time.Minute
	}
	c.Telegram.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.OpenAI.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Media.ApplyDefaults()
	c.Process.ApplyDefaults()
	c.Workspace.ApplyDefaults()
	c.Session.MaxVideoSizeMB = c.MaxVideoSizeMB
	c.Session.ApplyDefaults()
	c.Bot.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks struct tags, then each section, then the rules that
// span sections.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}

	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"transcription", &c.Transcription},
		{"media", &c.Media},
		{"workspace", &c.Workspace},
		{"bot", &c.Bot},
		{"server", &c.Server},
		{"observability", &c.Observability},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if c.Transcription.Backend == openai.ProviderName {
		if err := c.OpenAI.Validate(); err != nil {
			return err
		}
	}
	return validation.New().
		Positive("graceful_timeout", c.GracefulTimeout).
		Positive("bot.job_timeout", c.Bot.JobTimeout).
		Validate()
}

