package orchestrator

import (
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/aggregate"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
)

// AllFailedAdvisory is set on a run whose backends all ended in error.
const AllFailedAdvisory = "All backends failed. See per-backend errors for details."

// Phase is the lifecycle position of the current run.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseCancelled Phase = "cancelled"
)

// State is the status of one backend within a run.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateSuccess State = "success"
	StateError   State = "error"
)

// BackendStatus tracks one backend's call.
type BackendStatus struct {
	Backend evaluation.Backend `json:"backend"`
	State   State              `json:"state"`
	// Error is "[<backend>] <message>" when State is error.
	Error string `json:"error,omitempty"`
	// Logs holds diagnostics: reply logs, stderr or a truncated raw body.
	Logs string `json:"logs,omitempty"`
	// Kind is the failure classification when State is error.
	Kind       evaluation.FailureKind `json:"kind,omitempty"`
	FinishedAt *time.Time             `json:"finishedAt,omitempty"`
}

// Terminal reports whether the backend has settled.
func (s BackendStatus) Terminal() bool {
	return s.State == StateSuccess || s.State == StateError
}

// Snapshot is a deep copy of the orchestrator's state.
type Snapshot struct {
	RunID      string                                     `json:"runId,omitempty"`
	Config     *Configuration                             `json:"config,omitempty"`
	Phase      Phase                                      `json:"phase"`
	Statuses   []BackendStatus                            `json:"statuses"`
	Results    map[evaluation.Backend]aggregate.RunResult `json:"results"`
	Advisory   string                                     `json:"advisory,omitempty"`
	StartedAt  *time.Time                                 `json:"startedAt,omitempty"`
	FinishedAt *time.Time                                 `json:"finishedAt,omitempty"`
}

// Status returns the status of backend, if it is part of the run.
func (s Snapshot) Status(backend evaluation.Backend) (BackendStatus, bool) {
	for _, st := range s.Statuses {
		if st.Backend == backend {
			return st, true
		}
	}
	return BackendStatus{}, false
}

// Succeeded counts backends in the success state.
func (s Snapshot) Succeeded() int {
	n := 0
	for _, st := range s.Statuses {
		if st.State == StateSuccess {
			n++
		}
	}
	return n
}

// Means returns the mean of each successful backend's summary means.
func (s Snapshot) Means() aggregate.Means {
	return aggregate.CrossBackendMeans(s.Results)
}

// runState is the mutable state behind Snapshot. Guarded by Orchestrator.mu.
type runState struct {
	id         string
	config     Configuration
	phase      Phase
	statuses   []BackendStatus
	results    map[evaluation.Backend]aggregate.RunResult
	advisory   string
	startedAt  time.Time
	finishedAt time.Time
}

func idleState() *runState {
	return &runState{
		phase:   PhaseIdle,
		results: make(map[evaluation.Backend]aggregate.RunResult),
	}
}

func (r *runState) status(backend evaluation.Backend) *BackendStatus {
	for i := range r.statuses {
		if r.statuses[i].Backend == backend {
			return &r.statuses[i]
		}
	}
	return nil
}

func (r *runState) snapshot() Snapshot {
	snap := Snapshot{
		RunID:    r.id,
		Phase:    r.phase,
		Statuses: make([]BackendStatus, len(r.statuses)),
		Results:  make(map[evaluation.Backend]aggregate.RunResult, len(r.results)),
		Advisory: r.advisory,
	}
	copy(snap.Statuses, r.statuses)
	for i := range snap.Statuses {
		if t := snap.Statuses[i].FinishedAt; t != nil {
			tc := *t
			snap.Statuses[i].FinishedAt = &tc
		}
	}
	for b, res := range r.results {
		snap.Results[b] = res.Clone()
	}
	if r.id != "" {
		cfg := r.config.clone()
		snap.Config = &cfg
	}
	if !r.startedAt.IsZero() {
		t := r.startedAt
		snap.StartedAt = &t
	}
	if !r.finishedAt.IsZero() {
		t := r.finishedAt
		snap.FinishedAt = &t
	}
	return snap
}
