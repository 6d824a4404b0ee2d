package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jeffail/gabs/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/observability"
	"github.com/souadELmaazouzi/audio-processing-and-ui/resilience"
)

// Middleware wraps an Evaluator with cross-cutting behavior.
type Middleware func(Evaluator) Evaluator

// Chain composes middlewares; the first is outermost.
//
// Chain(a, b, c)(e) is equivalent to a(b(c(e))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Evaluator) Evaluator {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// Outcome labels how a call ended, for logs and metrics.
func Outcome(ctx context.Context, err error) string {
	if err == nil {
		return "success"
	}
	if ctx.Err() != nil {
		return "canceled"
	}
	if f, ok := AsFailure(err); ok {
		return string(f.Kind)
	}
	return "error"
}

type wrapped struct {
	inner Evaluator
	fn    func(ctx context.Context, req Request) (*gabs.Container, error)
}

func (w *wrapped) Name() string                         { return w.inner.Name() }
func (w *wrapped) IsAvailable(ctx context.Context) bool { return w.inner.IsAvailable(ctx) }
func (w *wrapped) Evaluate(ctx context.Context, req Request) (*gabs.Container, error) {
	return w.fn(ctx, req)
}

// WithLogging logs every call with its backend, duration and outcome.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Evaluator) Evaluator {
		return &wrapped{inner: inner, fn: func(ctx context.Context, req Request) (*gabs.Container, error) {
			start := time.Now()
			out, err := inner.Evaluate(ctx, req)
			fields := map[string]interface{}{
				logger.FieldBackend:   string(req.Backend),
				logger.FieldCondition: string(req.Condition),
				"transport":           inner.Name(),
				logger.FieldDuration:  time.Since(start).Milliseconds(),
				logger.FieldStatus:    Outcome(ctx, err),
			}
			l := log.WithContext(ctx)
			switch {
			case err == nil:
				l.Info("evaluation call ok", fields)
			case ctx.Err() != nil:
				l.Debug("evaluation call canceled", fields)
			default:
				fields[logger.FieldError] = err.Error()
				l.Warn("evaluation call failed", fields)
			}
			return out, err
		}}
	}
}

// WithTracing wraps every call in a span.
func WithTracing() Middleware {
	return func(inner Evaluator) Evaluator {
		return &wrapped{inner: inner, fn: func(ctx context.Context, req Request) (*gabs.Container, error) {
			ctx, span := observability.StartSpan(ctx, observability.SpanEvaluate,
				attribute.String(observability.AttrBackend, string(req.Backend)),
				attribute.String(observability.AttrCondition, string(req.Condition)),
				attribute.String(observability.AttrEQMode, string(req.EQMode)),
			)
			out, err := inner.Evaluate(ctx, req)
			span.SetAttributes(attribute.String(observability.AttrOutcome, Outcome(ctx, err)))
			observability.EndSpan(span, err)
			return out, err
		}}
	}
}

// WithMetrics records call counts and durations.
func WithMetrics(m *observability.Metrics) Middleware {
	return func(inner Evaluator) Evaluator {
		return &wrapped{inner: inner, fn: func(ctx context.Context, req Request) (*gabs.Container, error) {
			start := time.Now()
			out, err := inner.Evaluate(ctx, req)
			m.RecordEvaluation(context.WithoutCancel(ctx), string(req.Backend), Outcome(ctx, err), time.Since(start))
			return out, err
		}}
	}
}

// WithTimeout bounds each call to d. A call that runs out of time while the
// caller's context is still live becomes a FailureTimeout. d <= 0 disables
// the limit.
func WithTimeout(d time.Duration) Middleware {
	return func(inner Evaluator) Evaluator {
		if d <= 0 {
			return inner
		}
		return &wrapped{inner: inner, fn: func(ctx context.Context, req Request) (*gabs.Container, error) {
			callCtx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			out, err := inner.Evaluate(callCtx, req)
			if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				diag := ""
				if f, ok := AsFailure(err); ok {
					diag = f.Diagnostics
				}
				return nil, &Failure{
					Kind:        FailureTimeout,
					Backend:     req.Backend,
					Message:     fmt.Sprintf("evaluation timed out after %s", d),
					Diagnostics: diag,
					Cause:       err,
				}
			}
			return out, err
		}}
	}
}

// WithConcurrencyLimit makes calls wait for a slot in b. A call whose
// context ends while waiting returns the context error, not a Failure.
func WithConcurrencyLimit(b *resilience.Bulkhead) Middleware {
	return func(inner Evaluator) Evaluator {
		if b == nil {
			return inner
		}
		return &wrapped{inner: inner, fn: func(ctx context.Context, req Request) (*gabs.Container, error) {
			release, err := b.Acquire(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("waiting for evaluation slot: %w", ctx.Err())
				}
				return nil, TransportFailure(req.Backend, err, "")
			}
			defer release()
			return inner.Evaluate(ctx, req)
		}}
	}
}
