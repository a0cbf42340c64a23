package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/process"
)

// Audio is an extracted MP3 file and its measured length.
type Audio struct {
	Path     string
	Duration time.Duration
}

// Extractor produces an MP3 audio track from a video file.
type Extractor struct {
	runner process.Runner
	cfg    Config
	log    *logger.Logger
}

// NewExtractor creates an Extractor that runs ffmpeg through runner.
func NewExtractor(runner process.Runner, cfg Config) *Extractor {
	cfg.ApplyDefaults()
	return &Extractor{runner: runner, cfg: cfg, log: logger.WithComponent("media")}
}

// Available returns a TOOL_MISSING error if ffmpeg or ffprobe cannot be found.
func (e *Extractor) Available() error {
	for _, bin := range []string{e.cfg.FFmpegPath, e.cfg.FFprobePath} {
		if !process.LookPath(bin) {
			return errors.ToolMissing(bin)
		}
	}
	return nil
}

// Extract writes the audio track of videoPath to outputPath as MP3 and
// probes its duration. It is attempted once; failures are EXTRACTION_FAILED.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputPath string) (*Audio, error) {
	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", videoPath,
		"-vn",
		"-acodec", e.cfg.AudioCodec,
		"-ar", strconv.Itoa(e.cfg.SampleRate),
		"-ac", strconv.Itoa(e.cfg.Channels),
		"-ab", e.cfg.AudioBitrate,
		"-f", "mp3",
		outputPath,
	}
	res, err := e.runner.Run(ctx, process.Command{Binary: e.cfg.FFmpegPath, Args: args})
	if err != nil {
		return nil, e.fail("extract", err, res)
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return nil, e.fail("extract", fmt.Errorf("ffmpeg produced no audio at %s", outputPath), res)
	}

	duration, err := e.Probe(ctx, outputPath)
	if err != nil {
		return nil, err
	}
	e.log.Debug("audio extracted", logger.Fields("bytes", info.Size(), "duration_s", duration.Seconds()))
	return &Audio{Path: outputPath, Duration: duration}, nil
}

// Probe returns the container duration reported by ffprobe.
func (e *Extractor) Probe(ctx context.Context, path string) (time.Duration, error) {
	res, err := e.runner.Run(ctx, process.Command{
		Binary: e.cfg.FFprobePath,
		Args: []string{
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path,
		},
	})
	if err != nil {
		return 0, e.fail("probe", err, res)
	}
	d, err := ParseDuration(string(res.Stdout))
	if err != nil {
		return 0, e.fail("probe", err, res)
	}
	return d, nil
}

// ParseDuration converts ffprobe's seconds output (e.g. "312.480000") to a
// Duration with microsecond precision.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("unparsable duration %q", s)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return time.Duration(math.Round(secs*1e6)) * time.Microsecond, nil
}

func (e *Extractor) fail(op string, err error, res *process.Result) *errors.AppError {
	appErr := errors.Extraction(err).WithDetail("operation", op)
	fields := logger.ErrorFields(op, err)
	if tail := res.StderrTail(8); tail != "" {
		appErr.WithDetail("stderr", tail)
		fields["stderr"] = tail
	}
	e.log.Error("media tool failed", fields)
	return appErr
}
