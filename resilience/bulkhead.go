package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrBulkheadFull is returned when no slot frees up within MaxWait.
var ErrBulkheadFull = errors.New("bulkhead is full")

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	Name string
	// MaxConcurrent is the number of slots. Values below 1 mean 1.
	MaxConcurrent int
	// MaxWait is how long a caller queues for a slot. Zero fails at once.
	MaxWait time.Duration
	// OnReject is called with Name whenever a caller gives up on a slot.
	OnReject func(name string)
}

// Bulkhead caps how many jobs run at once. Callers that find it full queue
// for up to MaxWait.
type Bulkhead struct {
	config  BulkheadConfig
	sem     chan struct{}
	waiting atomic.Int32
}

func NewBulkhead(config BulkheadConfig) *Bulkhead {
	config.MaxConcurrent = max(1, config.MaxConcurrent)
	return &Bulkhead{config: config, sem: make(chan struct{}, config.MaxConcurrent)}
}

// Execute runs fn in a slot and releases it when fn returns.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		if b.config.OnReject != nil {
			b.config.OnReject(b.config.Name)
		}
		return err
	}
	defer func() { <-b.sem }()
	return fn()
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}
	if b.config.MaxWait <= 0 {
		return ErrBulkheadFull
	}

	b.waiting.Add(1)
	defer b.waiting.Add(-1)
	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InUse is the number of slots held right now.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// Waiting is the number of callers queued for a slot.
func (b *Bulkhead) Waiting() int { return int(b.waiting.Load()) }

func (b *Bulkhead) MaxConcurrent() int { return b.config.MaxConcurrent }
