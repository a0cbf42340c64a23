package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Runner executes subprocesses. Media code depends on this interface so tests
// can substitute a scripted fake for ffmpeg.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Config holds defaults applied by Exec.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM to SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// Timeout bounds a single invocation. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// StderrLines is how many trailing stderr lines an ExitError carries.
	StderrLines int `yaml:"stderr_lines" mapstructure:"stderr_lines"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.GracePeriod == 0 {
		c.GracePeriod = 5 * time.Second
	}
	if c.StderrLines == 0 {
		c.StderrLines = 8
	}
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	config Config
}

// NewExec creates an Exec runner.
func NewExec(cfg Config) *Exec {
	cfg.ApplyDefaults()
	return &Exec{config: cfg}
}

// Run executes cmd, applying the configured grace period and timeout.
func (e *Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = e.config.GracePeriod
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}
	result, err := Run(ctx, cmd)
	var exitErr *exec.ExitError
	if err != nil && errors.As(err, &exitErr) && ctx.Err() == nil {
		return result, &ExitError{Binary: cmd.Binary, ExitCode: result.ExitCode, Stderr: result.StderrTail(e.config.StderrLines)}
	}
	return result, err
}

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, SIGTERM is sent to the process group first,
// then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // arguments are built by this module, never by users
	c.Env = mergeEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process: %s killed by context: %w", cmd.Binary, ctx.Err())
		}
		return result, fmt.Errorf("process: %s: %w", cmd, err)
	}
	return result, nil
}

// LookPath reports whether binary resolves to an executable.
func LookPath(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}
