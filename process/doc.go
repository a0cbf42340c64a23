// Package process runs external binaries such as ffmpeg and ffprobe.
//
// Processes are started in their own process group so that cancellation
// reaches any children; SIGTERM is sent first and SIGKILL follows after the
// grace period.
package process
