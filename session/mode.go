package session

// Deliverables says which artifacts a Mode hands back to the user.
type Deliverables struct {
	Audio      bool
	Transcript bool
}

// Mode is the processing option a user picks for a submitted video. The set
// is closed: AudioOnly, TranscriptOnly and Both are the only implementations.
type Mode interface {
	// Key is the inline-keyboard callback data identifying the mode.
	Key() string
	// Label is the button text.
	Label() string
	Deliverables() Deliverables
	sealed()
}

// AudioOnly extracts and returns the MP3.
type AudioOnly struct{}

// TranscriptOnly returns only the transcript; the audio is discarded.
type TranscriptOnly struct{}

// Both returns the MP3 and the transcript.
type Both struct{}

func (AudioOnly) Key() string { return "audio_only" }
func (AudioOnly) Label() string { return "🎵 Audio only" }
func (AudioOnly) Deliverables() Deliverables { return Deliverables{Audio: true} }
func (AudioOnly) sealed() {}

func (TranscriptOnly) Key() string { return "transcription_only" }
func (TranscriptOnly) Label() string { return "📝 Transcript only" }
func (TranscriptOnly) Deliverables() Deliverables { return Deliverables{Transcript: true} }
func (TranscriptOnly) sealed() {}

func (Both) Key() string { return "audio_and_transcription" }
func (Both) Label() string { return "🎵📝 Audio + transcript" }
func (Both) Deliverables() Deliverables { return Deliverables{Audio: true, Transcript: true} }
func (Both) sealed() {}

// Modes returns every mode in keyboard order.
func Modes() []Mode {
	return []Mode{AudioOnly{}, TranscriptOnly{}, Both{}}
}

// ParseMode maps callback data back to a Mode.
func ParseMode(key string) (Mode, bool) {
	for _, m := range Modes() {
		if m.Key() == key {
			return m, true
		}
	}
	return nil, false
}
