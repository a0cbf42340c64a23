package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultStaleAfter is how old an abandoned job directory must be before Sweep removes it.
	DefaultStaleAfter = 6 * time.Hour
	// DefaultSweepSchedule re-runs Sweep while the service is up.
	DefaultSweepSchedule = "@every 1h"
)

// Config holds the scratch-space configuration.
type Config struct {
	// Root is the directory under which per-job directories are created.
	Root string `yaml:"root" mapstructure:"root"`
	// StaleAfter is the age at which leftover job directories are swept.
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
	// SweepSchedule is a cron spec (five fields or a descriptor such as
	// "@hourly"). "off" sweeps only at startup.
	SweepSchedule string `yaml:"sweep_schedule" mapstructure:"sweep_schedule"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Root == "" {
		c.Root = filepath.Join(os.TempDir(), "clipscribe")
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.SweepSchedule == "" {
		c.SweepSchedule = DefaultSweepSchedule
	}
}

// Periodic reports whether sweeps repeat after startup.
func (c *Config) Periodic() bool {
	return c.SweepSchedule != "off"
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("workspace: root is required")
	}
	if c.StaleAfter < 0 {
		return fmt.Errorf("workspace: stale_after must not be negative")
	}
	if c.Periodic() {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			return fmt.Errorf("workspace: sweep_schedule %q: %w", c.SweepSchedule, err)
		}
	}
	return nil
}
