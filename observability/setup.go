package observability

import (
	"context"
	"errors"
)

// Setup starts tracing and metrics export when cfg.Enabled is set and returns
// a shutdown function flushing both. With telemetry disabled it returns a
// no-op shutdown and leaves the global providers untouched.
func Setup(ctx context.Context, cfg Config, res Resource) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
