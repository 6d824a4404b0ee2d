package orchestrator

import (
	"context"
	"fmt"

	"github.com/souadELmaazouzi/audio-processing-and-ui/component"
)

// Name implements component.Component.
func (o *Orchestrator) Name() string { return "orchestrator" }

// Start implements component.Component. Runs are started on demand.
func (o *Orchestrator) Start(_ context.Context) error { return nil }

// Stop cancels the current run and waits until the calls of every run,
// superseded ones included, have returned.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	o.cancelLocked("")
	inflight := make([]*Handle, 0, len(o.active))
	for h := range o.active {
		h.cancel()
		inflight = append(inflight, h)
	}
	o.mu.Unlock()

	for _, h := range inflight {
		if err := h.Wait(ctx); err != nil {
			return fmt.Errorf("orchestrator: waiting for run %s: %w", h.id, err)
		}
	}
	return nil
}

// Health reports the phase of the current run.
func (o *Orchestrator) Health(_ context.Context) component.Health {
	snap := o.Snapshot()
	msg := string(snap.Phase)
	if snap.Advisory != "" {
		msg += ": " + snap.Advisory
	}
	return component.Health{
		Name:    o.Name(),
		Status:  component.StatusHealthy,
		Message: msg,
	}
}

// Describe implements component.Describable.
func (o *Orchestrator) Describe() component.Description {
	return component.Description{
		Name:    "Evaluation Orchestrator",
		Type:    "orchestrator",
		Details: fmt.Sprintf("timeout=%s", o.timeout),
	}
}
