// Package transcription turns audio chunks into one timeline-ordered
// transcript.
//
// Backends implement Provider and return segments in seconds relative to
// the chunk they were given. Transcriber calls the provider once per chunk,
// in order, shifts every segment by the summed duration of the chunks before
// it, and merges the result.
//
// # Backends
//
//   - transcription/openai: OpenAI Whisper API (whisper-1, verbose_json)
//   - transcription/whisper: self-hosted faster-whisper HTTP sidecar
package transcription
