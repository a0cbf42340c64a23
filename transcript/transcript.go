// Package transcript holds the merged, timeline-ordered transcript model and
// its plain-text rendering.
package transcript

import (
	"time"
	"unicode/utf8"
)

// Segment is a span of recognised speech on the full-audio timeline.
type Segment struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Transcript is the ordered result of transcribing one audio artifact.
// Segment start times are non-decreasing.
type Transcript struct {
	Segments []Segment     `json:"segments"`
	Duration time.Duration `json:"duration"`
	Language string        `json:"language,omitempty"`
	// Partial is set when only a prefix of the chunks was transcribed.
	Partial bool `json:"partial,omitempty"`
}

// Empty reports whether there is no speech in t.
func (t *Transcript) Empty() bool {
	return t == nil || len(t.Segments) == 0
}

// CharCount returns the number of characters (not bytes) in s.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
