package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/clipscribe/logger"
)

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var environments = []string{EnvDevelopment, EnvStaging, EnvProduction}

// ServiceConfig holds the settings shared by every binary: identity,
// environment and logging. Embed it with mapstructure:",squash" so the keys
// sit at the top level of config.yml.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig exposes the embedded block through promotion.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// IsProduction reports whether the service runs in production.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ApplyDefaults turns on debug logging in development and switches
// production to JSON logs unless a format was chosen explicitly.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	if c.IsProduction() && c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	c.Logging.ApplyDefaults()
}

func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
