package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/process"
)

// Window is a time range of the source audio.
type Window struct {
	Start    time.Duration
	Duration time.Duration
}

// End returns Start+Duration.
func (w Window) End() time.Duration { return w.Start + w.Duration }

// Chunk is one piece of the audio handed to the transcription API. Index is
// zero-based and determines the timestamp offset of its segments.
type Chunk struct {
	Index    int
	Start    time.Duration
	Duration time.Duration
	Path     string
}

// Plan splits total into consecutive windows of at most threshold. Audio no
// longer than threshold is a single window; otherwise the last window holds
// the remainder and no empty trailing window is produced. Window durations
// always sum to total.
func Plan(total, threshold time.Duration) ([]Window, error) {
	if total <= 0 {
		return nil, fmt.Errorf("media: total duration must be positive (got %s)", total)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("media: chunk duration must be positive (got %s)", threshold)
	}
	if total <= threshold {
		return []Window{{Start: 0, Duration: total}}, nil
	}

	full, rem := int(total/threshold), total%threshold
	windows := make([]Window, 0, full+1)
	for i := 0; i < full; i++ {
		windows = append(windows, Window{Start: time.Duration(i) * threshold, Duration: threshold})
	}
	if rem > 0 {
		windows = append(windows, Window{Start: time.Duration(full) * threshold, Duration: rem})
	}
	return windows, nil
}

// Chunker cuts audio into the windows produced by Plan.
type Chunker struct {
	runner process.Runner
	cfg    Config
	log    *logger.Logger
}

// NewChunker creates a Chunker that runs ffmpeg through runner.
func NewChunker(runner process.Runner, cfg Config) *Chunker {
	cfg.ApplyDefaults()
	return &Chunker{runner: runner, cfg: cfg, log: logger.WithComponent("media")}
}

// Split cuts audio into chunk files under dir. Audio that fits in one window
// is returned as a single chunk pointing at the original file. On failure
// every chunk file created so far is removed and the error is
// EXTRACTION_FAILED with the ffmpeg stderr tail attached.
func (c *Chunker) Split(ctx context.Context, audio *Audio, dir string) ([]Chunk, error) {
	windows, err := Plan(audio.Duration, c.cfg.ChunkDuration)
	if err != nil {
		return nil, errors.Extraction(err).WithDetail("operation", "split")
	}
	if len(windows) == 1 {
		return []Chunk{{Index: 0, Duration: audio.Duration, Path: audio.Path}}, nil
	}

	chunks := make([]Chunk, 0, len(windows))
	for i, w := range windows {
		out := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", i))
		res, err := c.runner.Run(ctx, process.Command{
			Binary: c.cfg.FFmpegPath,
			Args: []string{
				"-hide_banner", "-nostdin", "-y",
				"-ss", seconds(w.Start),
				"-t", seconds(w.Duration),
				"-i", audio.Path,
				"-acodec", "copy",
				out,
			},
		})
		if err == nil {
			if info, statErr := os.Stat(out); statErr != nil || info.Size() == 0 {
				err = fmt.Errorf("ffmpeg produced no audio at %s", out)
			}
		}
		if err != nil {
			_ = os.Remove(out)
			removeChunks(chunks)
			appErr := errors.Extraction(err).WithDetail("operation", "split").WithDetail("chunk", i)
			fields := logger.ErrorFields("split", err)
			fields[logger.FieldChunk] = i
			if tail := res.StderrTail(8); tail != "" {
				appErr.WithDetail("stderr", tail)
				fields["stderr"] = tail
			}
			c.log.Error("media tool failed", fields)
			return nil, appErr
		}
		chunks = append(chunks, Chunk{Index: i, Start: w.Start, Duration: w.Duration, Path: out})
	}
	c.log.Debug("audio split", logger.Fields("chunks", len(chunks), "chunk_s", c.cfg.ChunkDuration.Seconds()))
	return chunks, nil
}

func removeChunks(chunks []Chunk) {
	for _, ch := range chunks {
		_ = os.Remove(ch.Path)
	}
}

// seconds renders d for ffmpeg's -ss/-t options.
func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
