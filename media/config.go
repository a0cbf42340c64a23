package media

import (
	"fmt"
	"time"
)

// Config controls the ffmpeg invocations.
type Config struct {
	FFmpegPath    string        `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath   string        `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
	AudioCodec    string        `yaml:"audio_codec" mapstructure:"audio_codec"`
	AudioBitrate  string        `yaml:"audio_bitrate" mapstructure:"audio_bitrate"`
	SampleRate    int           `yaml:"sample_rate" mapstructure:"sample_rate"`
	Channels      int           `yaml:"channels" mapstructure:"channels"`
	ChunkDuration time.Duration `yaml:"chunk_duration" mapstructure:"chunk_duration"`
}

// ApplyDefaults fills zero values: MP3 at 192k, 44.1 kHz stereo, 5 minute chunks.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.AudioCodec == "" {
		c.AudioCodec = "libmp3lame"
	}
	if c.AudioBitrate == "" {
		c.AudioBitrate = "192k"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 44100
	}
	if c.Channels == 0 {
		c.Channels = 2
	}
	if c.ChunkDuration == 0 {
		c.ChunkDuration = 5 * time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ChunkDuration < 10*time.Second {
		return fmt.Errorf("media.chunk_duration must be at least 10s (got: %s)", c.ChunkDuration)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("media.channels must be 1 or 2 (got: %d)", c.Channels)
	}
	return nil
}
