package media

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/kbukum/clipscribe/errors"
)

func TestExtract_Success(t *testing.T) {
	runner := &fakeRunner{probeOut: "312.480000\n"}
	e := NewExtractor(runner, Config{})
	out := filepath.Join(t.TempDir(), "audio.mp3")

	audio, err := e.Extract(context.Background(), "video.mp4", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if audio.Path != out {
		t.Errorf("expected path %s, got %s", out, audio.Path)
	}
	if audio.Duration != 312480*time.Millisecond {
		t.Errorf("expected 312.48s, got %v", audio.Duration)
	}

	args := runner.argsOf(0)
	for _, want := range []string{"-vn", "libmp3lame", "44100", "192k", "mp3"} {
		if !slices.Contains(args, want) {
			t.Errorf("expected %q in ffmpeg args %v", want, args)
		}
	}
	if runner.calls[1].Binary != "ffprobe" {
		t.Errorf("expected ffprobe second, got %s", runner.calls[1].Binary)
	}
}

func TestExtract_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{failOn: 1}
	e := NewExtractor(runner, Config{})

	_, err := e.Extract(context.Background(), "video.mp4", filepath.Join(t.TempDir(), "audio.mp3"))
	if !errors.HasCode(err, errors.ErrCodeExtraction) {
		t.Fatalf("expected EXTRACTION_FAILED, got %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("expected a single attempt and no probe, got %d calls", len(runner.calls))
	}
}

func TestExtract_EmptyOutput(t *testing.T) {
	runner := &fakeRunner{emptyOutput: true, probeOut: "10"}
	e := NewExtractor(runner, Config{})
	_, err := e.Extract(context.Background(), "video.mp4", filepath.Join(t.TempDir(), "audio.mp3"))
	if !errors.HasCode(err, errors.ErrCodeExtraction) {
		t.Fatalf("expected EXTRACTION_FAILED for empty output, got %v", err)
	}
}

func TestExtract_UnparsableProbe(t *testing.T) {
	runner := &fakeRunner{probeOut: "N/A"}
	e := NewExtractor(runner, Config{})
	_, err := e.Extract(context.Background(), "video.mp4", filepath.Join(t.TempDir(), "audio.mp3"))
	if !errors.HasCode(err, errors.ErrCodeExtraction) {
		t.Fatalf("expected EXTRACTION_FAILED, got %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1.5\n", 1500 * time.Millisecond, false},
		{" 2400.000000 ", 40 * time.Minute, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"N/A", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAvailable_MissingBinary(t *testing.T) {
	e := NewExtractor(&fakeRunner{}, Config{FFmpegPath: "ffmpeg-missing-xyz", FFprobePath: "sh"})
	if err := e.Available(); !errors.HasCode(err, errors.ErrCodeToolMissing) {
		t.Fatalf("expected TOOL_MISSING, got %v", err)
	}
	e = NewExtractor(&fakeRunner{}, Config{FFmpegPath: "sh", FFprobePath: "sh"})
	if err := e.Available(); err != nil {
		t.Fatalf("expected available, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	cfg.ChunkDuration = time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for tiny chunk duration")
	}
}
