package process

import (
	"fmt"
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 if the process was killed.
	ExitCode int
	Duration time.Duration
}

// StderrTail returns at most the last n lines of stderr, trimmed.
// ffmpeg prints its banner first and the actual failure last.
func (r *Result) StderrTail(n int) string {
	if r == nil {
		return ""
	}
	lines := strings.Split(strings.TrimRight(string(r.Stderr), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExitError reports a subprocess that ran but exited non-zero.
type ExitError struct {
	Binary   string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("process: %s exited with code %d", e.Binary, e.ExitCode)
	}
	return fmt.Sprintf("process: %s exited with code %d: %s", e.Binary, e.ExitCode, e.Stderr)
}
