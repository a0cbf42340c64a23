// Package component defines the lifecycle interfaces shared by the bot,
// the ops server and the external tools the service depends on.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse. Probe adapts a plain availability check (ffmpeg on
// PATH, transcription backend reachable) into a Component so it shows up in
// /health.
package component
