package transcription

import (
	"fmt"
	"time"
)

// Config controls how chunks are sent to the backend.
type Config struct {
	// Backend selects the registered provider ("openai" or "whisper").
	Backend string `yaml:"backend" mapstructure:"backend" validate:"oneof=openai whisper"`
	// MaxAttempts bounds calls per chunk, including the first.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// InitialBackoff is the wait after the first failed attempt; it doubles after each further failure.
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	// KeepPartial returns the transcribed prefix when a later chunk fails.
	KeepPartial bool `yaml:"keep_partial" mapstructure:"keep_partial"`
	// BreakerFailures consecutive upstream failures open the circuit.
	BreakerFailures int `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration `yaml:"breaker_timeout" mapstructure:"breaker_timeout"`
	// PromptCarryover sends the tail of the previous chunk's text as a prompt.
	PromptCarryover bool `yaml:"prompt_carryover" mapstructure:"prompt_carryover"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = "openai"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout == 0 {
		c.BreakerTimeout = time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("transcription.max_attempts must be at least 1 (got: %d)", c.MaxAttempts)
	}
	return nil
}
