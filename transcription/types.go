package transcription

// Request holds parameters for a single transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language is the expected language of the audio (e.g. "en"). Empty
	// lets the backend detect it.
	Language string `json:"language,omitempty"`
	// Prompt biases recognition, e.g. with the tail of the previous chunk.
	Prompt string `json:"prompt,omitempty"`
}

// Response holds the result of one transcription call.
type Response struct {
	Text string `json:"text"`
	// Segments are relative to the start of the submitted audio.
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds, when reported.
	Duration float64 `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
}

// Segment is a time-aligned piece of a Response, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
