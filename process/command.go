package process

import (
	"strings"
	"time"
)

// Command is one ffmpeg or ffprobe invocation.
type Command struct {
	Binary string
	Args   []string
	// Env entries (KEY=value) are appended to the inherited environment.
	Env []string
	// GracePeriod between SIGTERM and SIGKILL on cancellation. Zero uses the
	// runner's default.
	GracePeriod time.Duration
}

// String renders the command line for logs, quoting arguments that contain
// spaces. Temporary file paths are printed as is.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Binary)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
