// Package job runs one processing request: it fetches the video into a
// private workspace, extracts the audio, and, depending on the selected
// mode, transcribes it and hands the results to a Sink.
package job

import (
	"context"

	"github.com/kbukum/clipscribe/media"
	"github.com/kbukum/clipscribe/session"
	"github.com/kbukum/clipscribe/transcript"
	"github.com/kbukum/clipscribe/transcription"
	"github.com/kbukum/clipscribe/workspace"
)

// Stage names a step of the pipeline, as reported to the Sink.
type Stage string

const (
	StageDownloading       Stage = "download"
	StageExtracting        Stage = "extract"
	StageSplitting         Stage = "split"
	StageTranscribing      Stage = "transcribe"
	StageFormatting        Stage = "format"
	StageSendingAudio      Stage = "send_audio"
	StageSendingTranscript Stage = "send_transcript"
)

// Status is a progress update. Part and Total are set while transcribing.
type Status struct {
	Stage Stage
	Part  int
	Total int
}

// Request is one processing run, created when the user picks a mode.
type Request struct {
	ID     string
	ChatID int64
	Video  session.VideoRef
	Mode   session.Mode
}

// Result summarises a finished run.
type Result struct {
	Audio      *media.Audio
	Transcript *transcript.Transcript
	Chunks     int
	// Chars is the character count of the delivered transcript text.
	Chars int
}

// Sink is the chat side of a run: where the video comes from, where
// progress and results go.
type Sink interface {
	// FetchVideo writes the referenced video to dst.
	FetchVideo(ctx context.Context, ref session.VideoRef, dst string) error
	// Status reports progress. It must not block for long.
	Status(ctx context.Context, s Status)
	DeliverAudio(ctx context.Context, path string) error
	// DeliverTranscript sends the formatted transcript. partial marks a
	// prefix kept after a later chunk failed.
	DeliverTranscript(ctx context.Context, text string, partial bool) error
}

// Extractor produces audio from a video file.
type Extractor interface {
	Extract(ctx context.Context, videoPath, outputPath string) (*media.Audio, error)
}

// Splitter cuts audio into transcription-sized chunks.
type Splitter interface {
	Split(ctx context.Context, audio *media.Audio, dir string) ([]media.Chunk, error)
}

// Transcriber turns ordered chunks into one transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, chunks []media.Chunk, progress transcription.Progress) (*transcript.Transcript, error)
}

// Workspaces hands out per-request directories.
type Workspaces interface {
	Create(id string) (*workspace.Dir, error)
}
