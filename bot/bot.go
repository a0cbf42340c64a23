// Package bot is the Telegram front end: it receives videos, offers the
// processing options, runs the selected request and reports progress and
// results back to the chat.
package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kbukum/clipscribe/component"
	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/httpclient"
	"github.com/kbukum/clipscribe/job"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/resilience"
	"github.com/kbukum/clipscribe/session"
)

// Processor runs one request.
type Processor interface {
	Process(ctx context.Context, req job.Request, sink job.Sink) (*job.Result, error)
}

// Deps are the collaborators a Bot needs.
type Deps struct {
	API        API
	Sessions   *session.Store
	Processor  Processor
	Downloader *httpclient.Client
	// Preflight, when set, is checked before offering options for a video
	// (e.g. that ffmpeg is installed).
	Preflight     func() error
	ChunkDuration time.Duration
	PollTimeout   int
}

// Bot handles Telegram updates.
type Bot struct {
	Deps
	cfg   Config
	jobs  *resilience.Bulkhead
	edits *resilience.RateLimiter
	log   *logger.Logger

	polling  atomic.Bool
	handlers sync.WaitGroup
	loopDone chan struct{}
	cancel   context.CancelFunc
}

var _ component.Component = (*Bot)(nil)

// New creates a Bot.
func New(deps Deps, cfg Config) (*Bot, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.API == nil || deps.Sessions == nil || deps.Processor == nil || deps.Downloader == nil {
		return nil, fmt.Errorf("bot: api, sessions, processor and downloader are required")
	}
	log := logger.WithComponent("bot")
	return &Bot{
		Deps: deps,
		cfg:  cfg,
		jobs: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "jobs",
			MaxConcurrent: cfg.MaxConcurrentJobs,
			MaxWait:       cfg.QueueWait,
			OnReject: func(name string) {
				log.Warn("request rejected, all job slots busy", logger.Fields("bulkhead", name))
			},
		}),
		edits: resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: "edits", Rate: cfg.EditRate}),
		log:   log,
	}, nil
}

// Name implements component.Component.
func (b *Bot) Name() string { return "telegram" }

// Start begins long polling. Updates are handled on their own goroutines.
func (b *Bot) Start(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.PollTimeout
	updates := b.API.GetUpdatesChan(u)
	b.loopDone = make(chan struct{})
	b.polling.Store(true)

	go func() {
		defer close(b.loopDone)
		defer b.polling.Store(false)
		for update := range updates {
			b.handlers.Add(1)
			go func(update tgbotapi.Update) {
				defer b.handlers.Done()
				b.HandleUpdate(ctx, update)
			}(update)
		}
	}()
	b.log.Info("polling for updates", logger.Fields("timeout_s", b.PollTimeout))
	return nil
}

// Stop stops polling and waits for running requests until ctx is done, at
// which point they are cancelled.
func (b *Bot) Stop(ctx context.Context) error {
	if b.cancel == nil {
		return nil
	}
	b.API.StopReceivingUpdates()

	finished := make(chan struct{})
	go func() {
		<-b.loopDone
		b.handlers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		b.cancel()
		return nil
	case <-ctx.Done():
		b.cancel()
		<-finished
		return fmt.Errorf("bot: requests cancelled at shutdown: %w", ctx.Err())
	}
}

// Health implements component.Component.
func (b *Bot) Health(context.Context) component.Health {
	h := component.Health{Name: b.Name(), Status: component.StatusHealthy}
	switch {
	case !b.polling.Load():
		h.Status, h.Message = component.StatusUnhealthy, "not polling"
	case b.jobs.InUse() >= b.jobs.MaxConcurrent():
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("all job slots busy, %d queued", b.jobs.Waiting())
	}
	return h
}

// Describe implements component.Describable.
func (b *Bot) Describe() component.Description {
	return component.Description{
		Name:    "Telegram Bot",
		Type:    "bot",
		Details: fmt.Sprintf("long-poll=%ds jobs=%d edit_rate=%.0f/s", b.PollTimeout, b.cfg.MaxConcurrentJobs, b.cfg.EditRate),
	}
}

// HandleUpdate dispatches one update. A panic in a handler is logged and
// does not stop the bot.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("update handler panicked", logger.Fields("update_id", update.UpdateID, "panic", fmt.Sprint(r)))
		}
	}()

	if q := update.CallbackQuery; q != nil {
		b.handleCallback(ctx, q)
		return
	}
	msg := update.Message
	if msg == nil {
		return
	}
	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case msg.Video != nil:
		v := msg.Video
		b.handleVideo(msg.Chat.ID, session.VideoRef{FileID: v.FileID, FileName: v.FileName, MimeType: v.MimeType, Size: int64(v.FileSize)})
	case msg.Document != nil:
		d := msg.Document
		b.handleVideo(msg.Chat.ID, session.VideoRef{FileID: d.FileID, FileName: d.FileName, MimeType: d.MimeType, Size: int64(d.FileSize)})
	case msg.Text != "":
		b.reply(msg.Chat.ID, echoText(msg.Text), nil)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		name := "there"
		if msg.From != nil && msg.From.FirstName != "" {
			name = msg.From.FirstName
		}
		b.reply(msg.Chat.ID, startText(name), nil)
	default:
		b.reply(msg.Chat.ID, helpText(b.Sessions.MaxVideoSizeMB(), b.ChunkDuration), nil)
	}
}

func (b *Bot) handleVideo(chatID int64, ref session.VideoRef) {
	log := b.log.WithFields(logger.Fields(logger.FieldChatID, chatID))
	if b.Preflight != nil {
		if err := b.Preflight(); err != nil {
			log.Error("preflight failed", logger.Fields(logger.FieldError, err.Error()))
			b.reply(chatID, failureText(err), nil)
			return
		}
	}
	if _, err := b.Sessions.SubmitVideo(chatID, ref); err != nil {
		log.Info("video rejected", logger.Fields(logger.FieldError, err.Error(), "size", ref.Size, "mime", ref.MimeType))
		b.reply(chatID, failureText(err), nil)
		return
	}
	log.Info("video received", logger.Fields("size_mb", fmt.Sprintf("%.1f", float64(ref.Size)/1024/1024)))
	b.reply(chatID, msgChooseMode, modeKeyboard())
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.API.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Debug("callback answer failed", logger.Fields(logger.FieldError, err.Error()))
	}
	if q.Message == nil {
		return
	}
	chatID, messageID := q.Message.Chat.ID, q.Message.MessageID

	sess, err := b.Sessions.SelectMode(chatID, q.Data)
	if err != nil {
		switch {
		case !isMode(q.Data):
			b.editText(chatID, messageID, msgUnknownOption)
		case sess.State != session.Processing:
			// a finished or expired session no longer holds a video
			b.editText(chatID, messageID, msgVideoNotFound)
		}
		return
	}

	log := b.log.WithFields(logger.Fields(logger.FieldChatID, chatID, logger.FieldRequestID, sess.RequestID, logger.FieldMode, sess.Mode.Key()))
	status := newStatusMessage(b.API, b.edits, chatID, messageID, b.cfg.AnimationInterval, log)
	status.Animate(ctx, msgProcessing)

	req := job.Request{ID: sess.RequestID, ChatID: chatID, Video: *sess.Video, Mode: sess.Mode}
	sink := &chatSink{bot: b, chatID: chatID, status: status}
	runErr := b.jobs.Execute(ctx, func() error {
		jobCtx, cancel := context.WithTimeout(ctx, b.cfg.JobTimeout)
		defer cancel()
		_, err := b.Processor.Process(jobCtx, req, sink)
		return err
	})
	if stderrors.Is(runErr, resilience.ErrBulkheadFull) {
		runErr = errors.New(errors.ErrCodeServiceUnavailable, "The server is busy right now. Please send the video again in a few minutes.").WithCause(runErr)
	}

	if _, err := b.Sessions.Finish(chatID, sess.RequestID, runErr); err != nil {
		log.Warn("session finished out of order", logger.Fields(logger.FieldError, err.Error()))
	}

	// the request context may already be cancelled at shutdown
	final := context.WithoutCancel(ctx)
	if runErr != nil {
		status.Set(final, failureText(runErr))
		return
	}
	status.Delete(final)
}

func (b *Bot) reply(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.API.Send(msg); err != nil {
		b.log.Error("send message failed", logger.Fields(logger.FieldChatID, chatID, logger.FieldError, err.Error()))
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	if _, err := b.API.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Debug("edit failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

func modeKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(session.Modes()))
	for _, m := range session.Modes() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(m.Label(), m.Key())))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func isMode(key string) bool {
	_, ok := session.ParseMode(key)
	return ok
}
