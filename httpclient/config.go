package httpclient

import (
	"fmt"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config configures the HTTP client.
type Config struct {
	// BaseURL is prepended to request paths that are not absolute URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds Do calls. Downloads are bounded by the context only.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// BearerToken, when set, is sent as "Authorization: Bearer <token>".
	BearerToken string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults sets a 30s timeout when none is given.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return nil
}
