package bot

import (
	"fmt"
	"time"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/job"
)

const (
	msgChooseMode      = "Choose how to process the video:"
	msgProcessing      = "Processing video"
	msgSendingAudio    = "Sending audio..."
	msgSendingText     = "Sending transcript..."
	msgTranscribing    = "Transcribing audio..."
	msgVideoNotFound   = "❌ Video not found. Please send the video again."
	msgUnknownOption   = "❌ Unknown option."
	msgFailed          = "❌ Something went wrong while processing the video."
	msgAudioCaption    = "🎵 Audio extracted from the video"
	audioFileName      = "audio.mp3"
	transcriptFileName = "transcription.txt"
)

var animationFrames = []string{".", "..", "..."}

func startText(name string) string {
	return fmt.Sprintf("Hi, %s! 👋\n\nSend me a video and I will extract its audio as MP3 and, if you like, a timestamped transcript.\n\nUse /help to see what I can do.", name)
}

func helpText(maxSizeMB int, chunk time.Duration) string {
	return fmt.Sprintf(`Commands:
/start - Start the bot
/help - Show this message

Send me a video and pick an option:
  - 🎵 Audio only - extract the MP3
  - 📝 Transcript only - text with timestamps
  - 🎵📝 Audio + transcript - both

Transcript format:
1. [00:00:00 - 00:00:15]
Text of the first phrase

2. [00:00:15 - 00:00:30]
Text of the second phrase

• Maximum video size: %d MB
• Long audio is split into parts of %s`, maxSizeMB, humanDuration(chunk))
}

func echoText(text string) string {
	return "You wrote: " + text
}

func transcriptCaption(chars int, partial bool) string {
	if partial {
		return fmt.Sprintf("📝 Partial transcript (%d characters)", chars)
	}
	return fmt.Sprintf("📝 Transcript (%d characters)", chars)
}

// statusText is the status-message text for a pipeline stage; ok is false
// for stages that keep the current text.
func statusText(s job.Status) (text string, animate, ok bool) {
	switch s.Stage {
	case job.StageDownloading, job.StageExtracting:
		return msgProcessing, true, true
	case job.StageTranscribing:
		if s.Total > 1 {
			return fmt.Sprintf("Transcribing audio (part %d/%d)...", s.Part, s.Total), false, true
		}
		return msgTranscribing, false, true
	case job.StageSendingAudio:
		return msgSendingAudio, false, true
	case job.StageSendingTranscript:
		return msgSendingText, false, true
	}
	return "", false, false
}

// failureText is what the user sees when a request fails. Internal detail
// never reaches it; only the error's user message and, for credential
// problems, a hint that the server is misconfigured.
func failureText(err error) string {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return msgFailed
	}
	text := "❌ " + appErr.Message
	if appErr.Code == errors.ErrCodeTranscription {
		switch appErr.Details["reason"] {
		case string(errors.ErrCodeUnauthorized):
			text += "\nThe transcription service rejected the server's credentials."
		case string(errors.ErrCodeRateLimited):
			text += "\nThe transcription service is rate limiting requests."
		}
	}
	return text
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
	return d.String()
}
