// Package session tracks, per chat, the video a user submitted and the
// processing option they picked, and enforces the order in which those
// steps may happen.
package session

import (
	stderrors "errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/logger"
)

const (
	defaultTTL            = time.Hour
	defaultMaxVideoSizeMB = 100
)

// ErrIgnored is returned for option selections that do not apply to the
// chat's current state. Callers drop the event silently.
var ErrIgnored = stderrors.New("session: event ignored in current state")

// ErrBusy is returned when a video arrives while the previous one is still processing.
var ErrBusy = errors.New(errors.ErrCodeInvalidInput, "Your previous video is still being processed. Please wait for it to finish.")

// VideoRef identifies a submitted video on the chat platform.
type VideoRef struct {
	FileID   string
	FileName string
	MimeType string
	// Size is the size reported by the platform, in bytes. Zero means unknown.
	Size int64
}

// Session is one chat's state. Values returned by Store are copies.
type Session struct {
	ChatID int64
	State  State
	Video  *VideoRef
	Mode   Mode
	// RequestID identifies the processing run started by SelectMode.
	RequestID string
	Err       error
	UpdatedAt time.Time
}

// Config controls session retention and video admission.
type Config struct {
	// TTL is how long an idle session is kept.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// MaxVideoSizeMB is the largest accepted video.
	MaxVideoSizeMB int `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.TTL == 0 {
		c.TTL = defaultTTL
	}
	if c.MaxVideoSizeMB == 0 {
		c.MaxVideoSizeMB = defaultMaxVideoSizeMB
	}
}

// Store holds sessions in an expiring in-memory cache. Transitions are
// serialised so two events for one chat cannot interleave.
type Store struct {
	mu    sync.Mutex
	cache *gocache.Cache
	cfg   Config
	now   func() time.Time
	log   *logger.Logger
}

// NewStore creates a Store.
func NewStore(cfg Config) *Store {
	cfg.ApplyDefaults()
	return &Store{
		cache: gocache.New(cfg.TTL, cfg.TTL/2),
		cfg:   cfg,
		now:   time.Now,
		log:   logger.WithComponent("session"),
	}
}

// MaxVideoSizeMB returns the admission limit.
func (s *Store) MaxVideoSizeMB() int { return s.cfg.MaxVideoSizeMB }

// Get returns the chat's session; an unknown chat is AwaitingVideo.
func (s *Store) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(chatID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.cache.ItemCount() }

// SubmitVideo validates ref and moves the chat to AwaitingOption. An invalid
// video leaves the chat in AwaitingVideo and returns TOO_LARGE or
// UNSUPPORTED_MEDIA. A chat that is still Processing gets ErrBusy. A new
// video replaces any pending one and restarts a finished chat.
func (s *Store) SubmitVideo(chatID int64, ref VideoRef) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(chatID)
	if sess.State == Processing {
		return sess, ErrBusy
	}
	if err := s.admit(ref); err != nil {
		sess = Session{ChatID: chatID, State: AwaitingVideo}
		s.save(&sess)
		return sess, err
	}
	v := ref
	sess = Session{ChatID: chatID, State: AwaitingOption, Video: &v}
	s.save(&sess)
	s.log.Debug("video accepted", logger.Fields(logger.FieldChatID, chatID, "size", ref.Size))
	return sess, nil
}

// SelectMode starts processing with the mode named by key. It applies only
// in AwaitingOption; any other state, or an unknown key, returns ErrIgnored
// without a transition.
func (s *Store) SelectMode(chatID int64, key string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(chatID)
	mode, ok := ParseMode(key)
	if !ok || sess.State != AwaitingOption {
		return sess, ErrIgnored
	}
	sess.State = Processing
	sess.Mode = mode
	sess.RequestID = uuid.NewString()
	s.save(&sess)
	return sess, nil
}

// Finish records the outcome of the run identified by requestID: Done when
// err is nil, Failed otherwise. Stale or unknown runs return ErrIgnored.
func (s *Store) Finish(chatID int64, requestID string, err error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load(chatID)
	if sess.State != Processing || sess.RequestID != requestID {
		return sess, ErrIgnored
	}
	sess.State = Done
	if err != nil {
		sess.State = Failed
		sess.Err = err
	}
	s.save(&sess)
	return sess, nil
}

func (s *Store) admit(ref VideoRef) error {
	limit := int64(s.cfg.MaxVideoSizeMB) * 1024 * 1024
	if ref.Size > limit {
		return errors.TooLarge(ref.Size, s.cfg.MaxVideoSizeMB)
	}
	if ref.MimeType != "" && !strings.HasPrefix(ref.MimeType, "video/") {
		return errors.UnsupportedMedia(ref.MimeType)
	}
	return nil
}

func (s *Store) load(chatID int64) Session {
	if v, ok := s.cache.Get(key(chatID)); ok {
		return v.(Session)
	}
	return Session{ChatID: chatID, State: AwaitingVideo}
}

func (s *Store) save(sess *Session) {
	sess.UpdatedAt = s.now()
	s.cache.Set(key(sess.ChatID), *sess, gocache.DefaultExpiration)
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
