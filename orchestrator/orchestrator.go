package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/souadELmaazouzi/audio-processing-and-ui/aggregate"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/observability"
)

// Evaluators resolves the evaluator serving a backend.
// *evaluation.Registry satisfies it.
type Evaluators interface {
	Get(backend evaluation.Backend) (evaluation.Evaluator, error)
}

// Orchestrator owns the current run and its state.
type Orchestrator struct {
	evaluators Evaluators
	log        *logger.Logger
	metrics    *observability.Metrics
	timeout    time.Duration
	hooks      []FinishHook

	mu      sync.Mutex
	state   *runState
	current *Handle
	// active holds every run whose calls have not all returned, including
	// superseded ones still winding down.
	active  map[*Handle]struct{}
	subs    map[int]chan Snapshot
	nextSub int
}

// New creates an Orchestrator.
func New(evaluators Evaluators, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		evaluators: evaluators,
		timeout:    DefaultTimeout,
		state:      idleState(),
		active:     make(map[*Handle]struct{}),
		subs:       make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get("orchestrator")
	} else {
		o.log = o.log.WithComponent("orchestrator")
	}
	return o
}

// Run starts a run for cfg, canceling any run still in flight. The run
// keeps ctx's values but not its cancellation; stop it through the returned
// Handle, Cancel or Reset.
func (o *Orchestrator) Run(ctx context.Context, cfg Configuration) (*Handle, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(logger.ContextWithRunID(context.WithoutCancel(ctx), runID))
	h := &Handle{id: runID, orch: o, cancel: cancel, done: make(chan struct{})}

	o.mu.Lock()
	if prev := o.current; prev != nil {
		prev.cancel()
		o.log.WithContext(runCtx).Info("superseding previous run", logger.Fields("previous_run_id", prev.id))
	}
	o.current = h
	o.active[h] = struct{}{}
	o.state = &runState{
		id:        runID,
		config:    cfg.clone(),
		phase:     PhaseRunning,
		statuses:  make([]BackendStatus, len(cfg.Backends)),
		results:   make(map[evaluation.Backend]aggregate.RunResult),
		startedAt: time.Now(),
	}
	for i, b := range cfg.Backends {
		o.state.statuses[i] = BackendStatus{Backend: b, State: StateRunning}
	}
	o.publishLocked()
	o.mu.Unlock()

	o.log.WithContext(runCtx).Info("run started", logger.Fields(
		"backends", fmt.Sprint(cfg.Backends),
		"eq_mode", string(cfg.EQMode),
		"apply_eq", cfg.ApplyEQ,
		logger.FieldCondition, string(cfg.Condition),
	))

	go o.execute(runCtx, h, cfg)
	return h, nil
}

func (o *Orchestrator) execute(ctx context.Context, h *Handle, cfg Configuration) {
	defer o.retire(h)
	defer h.cancel()

	ctx, span := observability.StartSpan(ctx, observability.SpanRun,
		attribute.String(observability.AttrRunID, h.id),
		attribute.String(observability.AttrCondition, string(cfg.Condition)),
		attribute.String(observability.AttrEQMode, string(cfg.EQMode)),
	)
	defer span.End()

	var g errgroup.Group
	for _, b := range cfg.Backends {
		g.Go(func() error {
			o.call(ctx, h.id, cfg.Request(b))
			return nil
		})
	}
	_ = g.Wait()

	o.finish(ctx, h.id)
}

// retire marks h's calls as returned.
func (o *Orchestrator) retire(h *Handle) {
	o.mu.Lock()
	delete(o.active, h)
	o.mu.Unlock()
	close(h.done)
}

// call runs one backend and settles its outcome. It never returns an error
// or panics, so one backend cannot stop the others.
func (o *Orchestrator) call(ctx context.Context, runID string, req evaluation.Request) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("evaluator panicked: %v", r)
			o.log.WithContext(ctx).Error("evaluator panicked", logger.Fields(
				logger.FieldBackend, string(req.Backend),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			))
			o.settleError(runID, req.Backend, &evaluation.Failure{
				Kind:    evaluation.FailureTransport,
				Backend: req.Backend,
				Message: err.Error(),
				Cause:   err,
			})
		}
	}()

	e, err := o.evaluators.Get(req.Backend)
	if err != nil {
		o.settleError(runID, req.Backend, &evaluation.Failure{
			Kind:    evaluation.FailureTransport,
			Backend: req.Backend,
			Message: err.Error(),
			Cause:   err,
		})
		return
	}
	e = evaluation.WithTimeout(o.timeout)(e)

	reply, err := e.Evaluate(ctx, req)
	switch {
	case err == nil:
		o.settleSuccess(runID, req.Backend, aggregate.Aggregate(reply))
	case ctx.Err() != nil:
		o.log.WithContext(ctx).Debug("call ended by cancellation", logger.Fields(logger.FieldBackend, string(req.Backend)))
	default:
		f, ok := evaluation.AsFailure(err)
		if !ok {
			f = &evaluation.Failure{Kind: evaluation.FailureTransport, Backend: req.Backend, Message: err.Error(), Cause: err}
		}
		o.settleError(runID, req.Backend, f)
	}
}

func (o *Orchestrator) settleSuccess(runID string, backend evaluation.Backend, result aggregate.RunResult) {
	o.settle(runID, backend, func(s *runState, st *BackendStatus) {
		st.State = StateSuccess
		st.Error = ""
		st.Kind = ""
		st.Logs = result.Logs
		s.results[backend] = result
	})
}

func (o *Orchestrator) settleError(runID string, backend evaluation.Backend, f *evaluation.Failure) {
	o.settle(runID, backend, func(s *runState, st *BackendStatus) {
		st.State = StateError
		st.Error = f.Error()
		st.Kind = f.Kind
		st.Logs = f.Diagnostics
		delete(s.results, backend)
	})
}

// settle is the single entry point for status mutations. Settlements for a
// run that is no longer current, or no longer running, are dropped.
func (o *Orchestrator) settle(runID string, backend evaluation.Backend, apply func(*runState, *BackendStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.id != runID || o.state.phase != PhaseRunning {
		o.log.Debug("dropping late settlement", logger.Fields(logger.FieldRunID, runID, logger.FieldBackend, string(backend)))
		return
	}
	st := o.state.status(backend)
	if st == nil || st.Terminal() {
		return
	}
	apply(o.state, st)
	now := time.Now()
	st.FinishedAt = &now
	o.publishLocked()
}

func (o *Orchestrator) finish(ctx context.Context, runID string) {
	o.mu.Lock()
	if o.state.id != runID || o.state.phase != PhaseRunning {
		o.mu.Unlock()
		return
	}
	o.state.phase = PhaseCompleted
	o.state.finishedAt = time.Now()
	succeeded := 0
	for _, st := range o.state.statuses {
		if st.State == StateSuccess {
			succeeded++
		}
	}
	if succeeded == 0 {
		o.state.advisory = AllFailedAdvisory
	}
	o.current = nil
	snap := o.state.snapshot()
	o.publishLocked()
	o.mu.Unlock()

	outcome := "success"
	switch {
	case succeeded == 0:
		outcome = "failed"
	case succeeded < len(snap.Statuses):
		outcome = "partial"
	}
	o.metrics.RecordRun(context.WithoutCancel(ctx), outcome)
	o.log.WithContext(ctx).Info("run completed", logger.Fields(
		logger.FieldStatus, outcome,
		"succeeded", succeeded,
		"backends", len(snap.Statuses),
		logger.FieldDuration, snap.FinishedAt.Sub(*snap.StartedAt).Milliseconds(),
	))

	for _, hook := range o.hooks {
		hook(snap)
	}
}

// Cancel stops the current run, if any. Backends still running stay in the
// running state.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelLocked("")
}

// cancelLocked cancels the current run when runID is empty or matches it.
func (o *Orchestrator) cancelLocked(runID string) bool {
	h := o.current
	if h == nil || (runID != "" && h.id != runID) {
		return false
	}
	h.cancel()
	o.current = nil
	if o.state.id == h.id && o.state.phase == PhaseRunning {
		o.state.phase = PhaseCancelled
		o.state.finishedAt = time.Now()
		o.metrics.RecordRun(context.Background(), "cancelled")
		o.log.Info("run cancelled", logger.Fields(logger.FieldRunID, h.id))
		o.publishLocked()
	}
	return true
}

// Reset cancels the current run and discards all run state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if h := o.current; h != nil {
		h.cancel()
		o.current = nil
	}
	o.state = idleState()
	o.publishLocked()
}

// Snapshot returns a deep copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.snapshot()
}

// Current returns the handle of the run in flight, or nil.
func (o *Orchestrator) Current() *Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Subscribe returns a channel that receives a snapshot after every state
// change, starting with the current one. Slow subscribers only see the
// latest snapshot. Call the returned function to unsubscribe.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	ch <- o.state.snapshot()
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			close(ch)
			o.mu.Unlock()
		})
	}
}

// publishLocked offers the current snapshot to every subscriber without
// blocking, replacing any snapshot the subscriber has not read yet.
func (o *Orchestrator) publishLocked() {
	if len(o.subs) == 0 {
		return
	}
	snap := o.state.snapshot()
	for _, ch := range o.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
