package evaluation

import (
	"context"

	"github.com/Jeffail/gabs/v2"
)

// Evaluator runs one backend evaluation call.
type Evaluator interface {
	// Name identifies the transport in logs and spans.
	Name() string
	// IsAvailable reports whether the transport can currently serve calls.
	IsAvailable(ctx context.Context) bool
	// Evaluate performs the call. On success it returns the decoded reply
	// object; failures are *Failure values; cancellation returns an error
	// wrapping ctx.Err().
	Evaluate(ctx context.Context, req Request) (*gabs.Container, error)
}

// Func adapts a function into an Evaluator.
type Func struct {
	Label string
	Fn    func(ctx context.Context, req Request) (*gabs.Container, error)
}

func (f Func) Name() string                      { return f.Label }
func (f Func) IsAvailable(_ context.Context) bool { return true }
func (f Func) Evaluate(ctx context.Context, req Request) (*gabs.Container, error) {
	return f.Fn(ctx, req)
}
