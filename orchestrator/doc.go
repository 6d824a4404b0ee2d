// Package orchestrator runs batch evaluations: one evaluation call per
// configured backend, all in flight at once, each settling independently.
//
// A backend failing never affects its siblings. The orchestrator owns the
// run state and exposes it only as deep-copied Snapshots. Starting a new run
// cancels the previous one, and any settlement that arrives for a run that
// is no longer current is dropped. Calls that end because their run was
// canceled leave their backend in the running state.
//
// Basic usage:
//
//	orch := orchestrator.New(registry, orchestrator.WithTimeout(30*time.Minute))
//	h, err := orch.Run(ctx, orchestrator.Configuration{
//	    EQMode:    evaluation.EQNone,
//	    Condition: evaluation.ConditionSpeaker3m,
//	    Backends:  evaluation.AllBackends(),
//	})
//	_ = h.Wait(ctx)
//	snap := orch.Snapshot()
package orchestrator
