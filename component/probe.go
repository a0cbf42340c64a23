package component

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Probe turns an availability check into a Component. Start runs the
// optional start hook and then the check, so a missing dependency fails
// startup. Health re-runs the check, caching the result for CacheFor.
type Probe struct {
	name     string
	desc     Description
	check    func(ctx context.Context) error
	onStart  func(ctx context.Context) error
	degraded bool
	cacheFor time.Duration

	mu      sync.Mutex
	last    Health
	checked time.Time
	now     func() time.Time
}

var (
	_ Component   = (*Probe)(nil)
	_ Describable = (*Probe)(nil)
)

// NewProbe creates a Probe for check.
func NewProbe(name string, check func(ctx context.Context) error) *Probe {
	return &Probe{name: name, check: check, desc: Description{Name: name}, now: time.Now}
}

// OnStart sets a hook that runs before the first check.
func (p *Probe) OnStart(fn func(ctx context.Context) error) *Probe {
	p.onStart = fn
	return p
}

// Optional makes a failing check report degraded instead of unhealthy and
// stops it from failing Start.
func (p *Probe) Optional() *Probe {
	p.degraded = true
	return p
}

// CacheFor limits how often Health hits the dependency.
func (p *Probe) CacheFor(d time.Duration) *Probe {
	p.cacheFor = d
	return p
}

// WithDescription sets the startup summary entry.
func (p *Probe) WithDescription(d Description) *Probe {
	if d.Name == "" {
		d.Name = p.name
	}
	p.desc = d
	return p
}

func (p *Probe) Name() string { return p.name }

func (p *Probe) Describe() Description { return p.desc }

func (p *Probe) Start(ctx context.Context) error {
	if p.onStart != nil {
		if err := p.onStart(ctx); err != nil {
			return err
		}
	}
	h := p.run(ctx)
	if h.Status == StatusUnhealthy {
		return fmt.Errorf("%s: %s", p.name, h.Message)
	}
	return nil
}

func (p *Probe) Stop(context.Context) error { return nil }

func (p *Probe) Health(ctx context.Context) Health {
	p.mu.Lock()
	if p.cacheFor > 0 && !p.checked.IsZero() && p.now().Sub(p.checked) < p.cacheFor {
		h := p.last
		p.mu.Unlock()
		return h
	}
	p.mu.Unlock()
	return p.run(ctx)
}

func (p *Probe) run(ctx context.Context) Health {
	h := Health{Name: p.name, Status: StatusHealthy}
	if err := p.check(ctx); err != nil {
		h.Status, h.Message = StatusUnhealthy, err.Error()
		if p.degraded {
			h.Status = StatusDegraded
		}
	}
	p.mu.Lock()
	p.last, p.checked = h, p.now()
	p.mu.Unlock()
	return h
}
