package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/kbukum/clipscribe/component"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/workspace"
)

// janitor removes request workspaces left behind by crashes or killed
// processes: once on start, then on the configured cron schedule.
type janitor struct {
	manager *workspace.Manager
	cfg     workspace.Config
	log     *logger.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
	lastErr   error
}

func newJanitor(m *workspace.Manager, cfg workspace.Config, log *logger.Logger) *janitor {
	return &janitor{manager: m, cfg: cfg, log: log.WithComponent("janitor")}
}

func (j *janitor) Name() string { return "workspace" }

func (j *janitor) Start(context.Context) error {
	if err := j.sweep(); err != nil {
		return err
	}
	if !j.cfg.Periodic() {
		return nil
	}
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{j.log})))
	if _, err := c.AddFunc(j.cfg.SweepSchedule, func() { _ = j.sweep() }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	j.mu.Lock()
	j.scheduler = c
	j.mu.Unlock()
	return nil
}

// Stop waits for a running sweep to finish or ctx to end.
func (j *janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	c := j.scheduler
	j.scheduler = nil
	j.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *janitor) sweep() error {
	_, err := j.manager.Sweep(j.cfg.StaleAfter)
	j.mu.Lock()
	j.lastErr = err
	j.mu.Unlock()
	if err != nil {
		j.log.Error("workspace sweep failed", logger.Fields(logger.FieldError, err.Error(), "root", j.manager.Root()))
		return fmt.Errorf("sweep %s: %w", j.manager.Root(), err)
	}
	return nil
}

func (j *janitor) Health(context.Context) component.Health {
	h := component.Health{Name: j.Name(), Status: component.StatusHealthy}
	if _, err := os.Stat(j.manager.Root()); err != nil {
		h.Status, h.Message = component.StatusUnhealthy, err.Error()
		return h
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastErr != nil {
		h.Status, h.Message = component.StatusDegraded, "last sweep failed: "+j.lastErr.Error()
	}
	return h
}

func (j *janitor) Describe() component.Description {
	schedule := j.cfg.SweepSchedule
	if !j.cfg.Periodic() {
		schedule = "startup only"
	}
	return component.Description{
		Type:    "storage",
		Details: fmt.Sprintf("%s sweep=%s stale_after=%s", j.manager.Root(), schedule, j.cfg.StaleAfter),
	}
}

// cronLogger routes cron's panic recovery into the service logger.
type cronLogger struct{ log *logger.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, logger.Fields(keysAndValues...))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := logger.Fields(keysAndValues...)
	fields[logger.FieldError] = err.Error()
	l.log.Error(msg, fields)
}
