// Package media turns an uploaded video into transcription-sized MP3 pieces
// by driving ffmpeg and ffprobe through a process.Runner.
package media
