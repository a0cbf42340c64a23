package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/resilience"
)

// statusMessage owns the chat message that shows a request's progress.
// Edits are serialised; at most one animation runs at a time.
type statusMessage struct {
	api       API
	edits     *resilience.RateLimiter
	chatID    int64
	messageID int
	interval  time.Duration
	log       *logger.Logger

	editMu sync.Mutex
	last   string

	animMu   sync.Mutex
	animBase string
	stop     chan struct{}
	done     chan struct{}
}

func newStatusMessage(api API, edits *resilience.RateLimiter, chatID int64, messageID int, interval time.Duration, log *logger.Logger) *statusMessage {
	return &statusMessage{api: api, edits: edits, chatID: chatID, messageID: messageID, interval: interval, log: log}
}

// Animate cycles base through the dot frames until Set or Delete is called.
// Calling it again with the same base keeps the running animation.
func (s *statusMessage) Animate(ctx context.Context, base string) {
	s.animMu.Lock()
	defer s.animMu.Unlock()
	if s.stop != nil && s.animBase == base {
		return
	}
	s.stopLocked()

	s.animBase = base
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.edit(ctx, base+animationFrames[0], true)
	go s.animate(ctx, base, s.stop, s.done)
}

func (s *statusMessage) animate(ctx context.Context, base string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for i := 1; ; i++ {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// frames are cosmetic; drop them rather than queue behind the limiter
			if s.edits.Allow() {
				s.edit(ctx, base+animationFrames[i%len(animationFrames)], false)
			}
		}
	}
}

// Set stops any animation and replaces the text.
func (s *statusMessage) Set(ctx context.Context, text string) {
	s.stopAnimation()
	s.edit(ctx, text, true)
}

// Delete stops any animation and removes the message.
func (s *statusMessage) Delete(ctx context.Context) {
	s.stopAnimation()
	s.editMu.Lock()
	defer s.editMu.Unlock()
	if _, err := s.api.Request(tgbotapi.NewDeleteMessage(s.chatID, s.messageID)); err != nil {
		s.log.Debug("status delete failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

func (s *statusMessage) stopAnimation() {
	s.animMu.Lock()
	defer s.animMu.Unlock()
	s.stopLocked()
}

func (s *statusMessage) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done, s.animBase = nil, nil, ""
}

func (s *statusMessage) edit(ctx context.Context, text string, wait bool) {
	s.editMu.Lock()
	defer s.editMu.Unlock()
	if text == s.last {
		return
	}
	if wait {
		if err := s.edits.Wait(ctx); err != nil {
			return
		}
	}
	if _, err := s.api.Send(tgbotapi.NewEditMessageText(s.chatID, s.messageID, text)); err != nil {
		// "message is not modified" and friends are harmless
		s.log.Debug("status edit failed", logger.Fields(logger.FieldError, err.Error()))
		return
	}
	s.last = text
}
