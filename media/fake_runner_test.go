package media

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/kbukum/clipscribe/process"
)

// fakeRunner plays ffmpeg and ffprobe: ffmpeg writes its last argument,
// ffprobe prints probeOut.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []process.Command
	probeOut string
	// failOn is the 1-based ffmpeg call that exits non-zero; 0 never fails.
	failOn      int
	ffmpegCalls int
	emptyOutput bool
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)

	if cmd.Binary == "ffprobe" {
		return &process.Result{Stdout: []byte(f.probeOut)}, nil
	}
	f.ffmpegCalls++
	out := cmd.Args[len(cmd.Args)-1]
	if f.failOn == f.ffmpegCalls {
		_ = os.WriteFile(out, []byte("partial"), 0o600)
		res := &process.Result{ExitCode: 1, Stderr: []byte("ffmpeg version x\nInvalid data found when processing input\n")}
		return res, &process.ExitError{Binary: cmd.Binary, ExitCode: 1, Stderr: res.StderrTail(1)}
	}
	content := []byte("ID3 fake mp3")
	if f.emptyOutput {
		content = nil
	}
	if err := os.WriteFile(out, content, 0o600); err != nil {
		return nil, fmt.Errorf("fake write: %w", err)
	}
	return &process.Result{}, nil
}

func (f *fakeRunner) argsOf(i int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i].Args
}
