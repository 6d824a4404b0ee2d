package orchestrator

import "context"

// Handle controls one run.
type Handle struct {
	id     string
	orch   *Orchestrator
	cancel context.CancelFunc
	done   chan struct{}
}

// RunID returns the run's identifier.
func (h *Handle) RunID() string { return h.id }

// Cancel stops this run if it is still the current one. Canceling a run
// that already finished or was superseded is a no-op.
func (h *Handle) Cancel() {
	h.orch.mu.Lock()
	defer h.orch.mu.Unlock()
	if !h.orch.cancelLocked(h.id) {
		h.cancel()
	}
}

// Done is closed once every backend call of the run has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run's calls have returned or ctx ends.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
