package session

// State is where a chat is in the video lifecycle.
type State int

const (
	AwaitingVideo State = iota
	AwaitingOption
	Processing
	Done
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case AwaitingVideo:
		return "awaiting_video"
	case AwaitingOption:
		return "awaiting_option"
	case Processing:
		return "processing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible without a new video.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
