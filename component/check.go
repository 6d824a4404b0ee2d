package component

import (
	"context"
	"sync"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// Check is a Component whose only job is to report the result of a check
// function. A failing check is reported with the configured status and never fails
// Start, so a missing optional tool degrades the service instead of
// preventing it from booting.
type Check struct {
	name    string
	details string
	check   func(ctx context.Context) error
	failAs  HealthStatus
	log     *logger.Logger

	mu      sync.Mutex
	lastErr error
}

// NewCheck creates a check that reports StatusDegraded when check fails.
func NewCheck(name, details string, check func(ctx context.Context) error, log *logger.Logger) *Check {
	return &Check{
		name:    name,
		details: details,
		check:   check,
		failAs:  StatusDegraded,
		log:     log.WithComponent(name),
	}
}

// Required makes check failures report StatusUnhealthy.
func (p *Check) Required() *Check {
	p.failAs = StatusUnhealthy
	return p
}

// Name returns the check name.
func (p *Check) Name() string { return p.name }

// Start runs the check once and logs a warning if it fails.
func (p *Check) Start(ctx context.Context) error {
	if err := p.run(ctx); err != nil {
		p.log.Warn("check failed at startup", logger.Fields(logger.FieldError, err.Error()))
	}
	return nil
}

// Stop is a no-op.
func (p *Check) Stop(context.Context) error { return nil }

// Health re-runs the check.
func (p *Check) Health(ctx context.Context) Health {
	if err := p.run(ctx); err != nil {
		return Health{Name: p.name, Status: p.failAs, Message: err.Error()}
	}
	return Health{Name: p.name, Status: StatusHealthy, Message: p.details}
}

// LastError returns the result of the most recent check.
func (p *Check) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Describe implements Describable.
func (p *Check) Describe() Description {
	return Description{Name: p.name, Type: "check", Details: p.details}
}

func (p *Check) run(ctx context.Context) error {
	err := p.check(ctx)
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	return err
}
