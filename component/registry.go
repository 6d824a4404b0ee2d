package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

// componentEntry holds a component and its started state.
type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries []*componentEntry
	lookup  map[string]*componentEntry
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewRegistry creates a new component registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		entries: make([]*componentEntry, 0),
		lookup:  make(map[string]*componentEntry),
		log:     log.WithComponent("components"),
	}
}

// Register adds a component to the registry. Components are started in
// the order they are registered, so register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts all components in registration order. It stops at the
// first failure; components already started stay started for StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting all components", logger.Fields("count", len(r.entries)))

	for _, entry := range r.entries {
		if entry.started {
			continue
		}
		name := entry.component.Name()
		if err := entry.component.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		entry.started = true
		r.log.Debug("Component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll gracefully stops all started components in reverse registration
// order, giving each at most DefaultStopTimeout.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Stopping all components")

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}

		name := entry.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("Component stop failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
		} else {
			r.log.Debug("Component stopped", logger.Fields(logger.FieldComponent, name))
		}
		entry.started = false
		cancel()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// Summary returns the description of every component, in registration
// order. Components that are not Describable get their Name only.
func (r *Registry) Summary() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Description, 0, len(r.entries))
	for _, entry := range r.entries {
		d := Description{Name: entry.component.Name()}
		if desc, ok := entry.component.(Describable); ok {
			d = desc.Describe()
			if d.Name == "" {
				d.Name = entry.component.Name()
			}
		}
		out = append(out, d)
	}
	return out
}

// LogSummary writes one line per component and, for RouteProviders, one
// line per route.
func (r *Registry) LogSummary() {
	for _, d := range r.Summary() {
		r.log.Info(d.Name, logger.Fields("type", d.Type, "details", d.Details))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		rp, ok := entry.component.(RouteProvider)
		if !ok {
			continue
		}
		for _, route := range rp.Routes() {
			r.log.Debug("route", logger.Fields("method", route.Method, "path", route.Path, "handler", route.Handler))
		}
	}
}
