package logger

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Rotation bounds a log file. It applies only when Output is a path.
type Rotation struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

func (r *Rotation) applyDefaults() {
	if r.MaxSizeMB == 0 {
		r.MaxSizeMB = 100
	}
	if r.MaxBackups == 0 {
		r.MaxBackups = 5
	}
	if r.MaxAgeDays == 0 {
		r.MaxAgeDays = 14
	}
}

// isFile reports whether output names a file rather than a stream.
func isFile(output string) bool {
	switch strings.ToLower(output) {
	case "", "stdout", "stderr":
		return false
	}
	return true
}

func outputWriter(cfg *Config) io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		return os.Stderr
	case "", "stdout":
		return os.Stdout
	}
	r := cfg.Rotation
	r.applyDefaults()
	return &lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    r.MaxSizeMB,
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAgeDays,
		Compress:   r.Compress,
		LocalTime:  true,
	}
}
