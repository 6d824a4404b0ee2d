package orchestrator

import (
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/observability"
)

// DefaultTimeout bounds each backend call unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Minute

// FinishHook is called with the final snapshot of every run that completes.
// Canceled and superseded runs do not trigger it.
type FinishHook func(Snapshot)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithMetrics records run outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithTimeout bounds each backend call. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithFinishHook registers a hook run after every completed run.
func WithFinishHook(h FinishHook) Option {
	return func(o *Orchestrator) {
		o.hooks = append(o.hooks, h)
	}
}
