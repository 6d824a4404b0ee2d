package resilience

import (
	"context"
	"errors"
	"time"
)

// Common bulkhead errors.
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// WaitForContext makes Acquire block until a slot frees up or the caller's
// context ends.
const WaitForContext time.Duration = -1

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name identifies this bulkhead in logs.
	Name string
	// MaxConcurrent is the maximum number of concurrent holders.
	MaxConcurrent int
	// MaxWait is how long to wait for a slot. 0 fails immediately,
	// WaitForContext waits until the context is done.
	MaxWait time.Duration
	// OnReject is called when a request is rejected.
	OnReject func(name string)
}

// Bulkhead limits concurrent access to a shared resource.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}
}

// NewBulkhead creates a new bulkhead. MaxConcurrent below 1 is raised to 1.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Acquire takes a slot and returns the function that gives it back.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	if err := b.acquire(ctx); err != nil {
		if b.config.OnReject != nil {
			b.config.OnReject(b.config.Name)
		}
		return nil, err
	}
	return func() { <-b.sem }, nil
}

// Execute runs fn while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	release, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	switch {
	case b.config.MaxWait == 0:
		return ErrBulkheadFull
	case b.config.MaxWait < 0:
		select {
		case b.sem <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int {
	return len(b.sem)
}

// MaxConcurrent returns the maximum concurrent holders allowed.
func (b *Bulkhead) MaxConcurrent() int {
	return b.config.MaxConcurrent
}
