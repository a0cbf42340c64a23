package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/httpclient"
	"github.com/kbukum/clipscribe/job"
	"github.com/kbukum/clipscribe/session"
	"github.com/kbukum/clipscribe/transcript"
)

const telegramService = "Telegram"

// chatSink connects one request to its chat.
type chatSink struct {
	bot    *Bot
	chatID int64
	status *statusMessage
}

var _ job.Sink = (*chatSink)(nil)

// FetchVideo resolves the file through the Bot API and streams it to dst,
// refusing to write more than the configured maximum.
func (s *chatSink) FetchVideo(ctx context.Context, ref session.VideoRef, dst string) error {
	url, err := s.bot.API.GetFileDirectURL(ref.FileID)
	if err != nil {
		return errors.ExternalServiceError(telegramService, err).WithDetail("operation", "get_file")
	}

	f, err := os.Create(dst)
	if err != nil {
		return errors.Internal(fmt.Errorf("create video file: %w", err))
	}
	defer f.Close()

	limitMB := s.bot.Sessions.MaxVideoSizeMB()
	n, err := s.bot.Downloader.Download(ctx, url, f, int64(limitMB)*1024*1024)
	if err != nil {
		var httpErr *httpclient.Error
		if stderrors.As(err, &httpErr) {
			if httpErr.Code == httpclient.ErrCodeTooLarge {
				return errors.TooLarge(n, limitMB)
			}
			return httpErr.ToAppError(telegramService)
		}
		return errors.Internal(err)
	}
	return f.Close()
}

func (s *chatSink) Status(ctx context.Context, st job.Status) {
	text, animate, ok := statusText(st)
	switch {
	case !ok:
	case animate:
		s.status.Animate(ctx, text)
	default:
		s.status.Set(ctx, text)
	}
}

func (s *chatSink) DeliverAudio(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Internal(fmt.Errorf("open audio: %w", err))
	}
	defer f.Close()

	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FileReader{Name: audioFileName, Reader: f})
	doc.Caption = msgAudioCaption
	return s.send(ctx, doc)
}

func (s *chatSink) DeliverTranscript(ctx context.Context, text string, partial bool) error {
	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FileBytes{Name: transcriptFileName, Bytes: []byte(text)})
	doc.Caption = transcriptCaption(transcript.CharCount(text), partial)
	return s.send(ctx, doc)
}

func (s *chatSink) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.bot.API.Send(c); err != nil {
		return errors.ExternalServiceError(telegramService, err).WithDetail("operation", "send_document")
	}
	return nil
}
