package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/component"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// DefaultGracefulTimeout bounds shutdown when WithGracefulTimeout is not set.
const DefaultGracefulTimeout = 15 * time.Second

// App drives the lifecycle of a service whose config type is C.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: DefaultGracefulTimeout,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging, base.Name)
		app.Logger = logger.GetGlobalLogger()
	}
	app.Components = component.NewRegistry(app.Logger)
	return app, nil
}

// RegisterComponent adds a component to the registry. Components
// registered from an OnConfigure callback are started right after it.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, which runs
// after the first set of components has started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck reports every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the service and blocks until SIGINT, SIGTERM or ctx ends,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.shutdownAfterFailure()
		return err
	}

	a.Logger.Info("ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask runs a finite task with the same startup and shutdown as Run.
// SIGINT and SIGTERM cancel the task's context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.shutdownAfterFailure()
		return err
	}

	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("task interrupted by signal")
	}

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("starting configured components: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Components.LogSummary()
	a.Logger.Info("startup complete", logger.Fields(logger.FieldDuration, time.Since(start).Milliseconds()))
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx ends. It returns the
// signal, or nil when ctx ended first.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the app. Use it when managing the lifecycle by hand.
func (a *App[C]) Shutdown(_ context.Context) error {
	return a.stop()
}

// shutdownAfterFailure stops whatever started before a failed startup.
func (a *App[C]) shutdownAfterFailure() {
	if err := a.stop(); err != nil {
		a.Logger.Warn("cleanup after failed startup", logger.Fields(logger.FieldError, err.Error()))
	}
}

func (a *App[C]) stop() error {
	a.Logger.Info("shutting down", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook failed", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("shutdown complete")
	return shutdownErr
}
