package bot

import (
	"fmt"
	"time"
)

// TelegramConfig holds the Bot API connection settings.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" mapstructure:"bot_token" validate:"required"`
	// APIEndpoint is a Bot API URL template with two %s verbs (token,
	// method). Empty uses api.telegram.org.
	APIEndpoint string `yaml:"api_endpoint" mapstructure:"api_endpoint"`
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int `yaml:"poll_timeout" mapstructure:"poll_timeout"`
}

// ApplyDefaults fills zero values.
func (c *TelegramConfig) ApplyDefaults() {
	if c.PollTimeout == 0 {
		c.PollTimeout = 60
	}
}

// Config controls request handling.
type Config struct {
	// MaxConcurrentJobs caps requests processed at once.
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs" mapstructure:"max_concurrent_jobs"`
	// QueueWait is how long a request waits for a free slot.
	QueueWait time.Duration `yaml:"queue_wait" mapstructure:"queue_wait"`
	// EditRate is the number of status-message edits per second.
	EditRate float64 `yaml:"edit_rate" mapstructure:"edit_rate"`
	// JobTimeout bounds one request end to end.
	JobTimeout time.Duration `yaml:"job_timeout" mapstructure:"job_timeout"`
	// AnimationInterval is the delay between status animation frames.
	AnimationInterval time.Duration `yaml:"animation_interval" mapstructure:"animation_interval"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrentJobs == 0 {
		c.MaxConcurrentJobs = 4
	}
	if c.QueueWait == 0 {
		c.QueueWait = 30 * time.Second
	}
	if c.EditRate == 0 {
		c.EditRate = 5
	}
	if c.JobTimeout == 0 {
		c.JobTimeout = 30 * time.Minute
	}
	if c.AnimationInterval == 0 {
		c.AnimationInterval = time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("bot.max_concurrent_jobs must be at least 1 (got: %d)", c.MaxConcurrentJobs)
	}
	if c.EditRate <= 0 {
		return fmt.Errorf("bot.edit_rate must be positive (got: %v)", c.EditRate)
	}
	return nil
}
