package evaluation

import (
	"fmt"
	"sync"
)

// Registry maps backends to the evaluator serving them.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[Backend]Evaluator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{evaluators: make(map[Backend]Evaluator)}
}

// Register sets the evaluator for backend, replacing any previous one.
func (r *Registry) Register(backend Backend, e Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[backend] = e
}

// Get returns the evaluator for backend.
func (r *Registry) Get(backend Backend) (Evaluator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.evaluators[backend]
	if !ok {
		return nil, fmt.Errorf("no evaluator registered for backend %q", backend)
	}
	return e, nil
}

// Backends returns the registered known backends in display order.
func (r *Registry) Backends() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Backend, 0, len(r.evaluators))
	for _, b := range AllBackends() {
		if _, ok := r.evaluators[b]; ok {
			out = append(out, b)
		}
	}
	return out
}
