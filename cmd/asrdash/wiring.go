package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"

	"github.com/souadELmaazouzi/audio-processing-and-ui/analysis"
	"github.com/souadELmaazouzi/audio-processing-and-ui/api"
	"github.com/souadELmaazouzi/audio-processing-and-ui/archive"
	"github.com/souadELmaazouzi/audio-processing-and-ui/bootstrap"
	"github.com/souadELmaazouzi/audio-processing-and-ui/component"
	"github.com/souadELmaazouzi/audio-processing-and-ui/config"
	"github.com/souadELmaazouzi/audio-processing-and-ui/dataset"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation/remote"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation/script"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/observability"
	"github.com/souadELmaazouzi/audio-processing-and-ui/orchestrator"
	"github.com/souadELmaazouzi/audio-processing-and-ui/process"
	"github.com/souadELmaazouzi/audio-processing-and-ui/resilience"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server/endpoint"
)

type application = bootstrap.App[*config.AppConfig]

// wiring builds the components of one process. Infrastructure is
// registered before startup; the orchestrator and HTTP server are built in
// the configure phase, once the archive store and telemetry exist.
type wiring struct {
	app     *application
	runner  *process.Runner
	archive *archive.Component
	metrics *observability.Metrics
}

func newWiring(app *application) *wiring {
	return &wiring{
		app:    app,
		runner: process.NewRunner(app.Cfg.Scripts.Process),
	}
}

func (w *wiring) registerInfrastructure() error {
	cfg := w.app.Cfg
	log := w.app.Logger

	w.archive = archive.NewComponent(cfg.Archive, log)
	components := []component.Component{
		w.archive,
		component.NewCheck("dataset", cfg.Dataset.Root, w.checkDataset, log),
		component.NewCheck("ffmpeg", dataset.FFmpeg, w.checkBinary(dataset.FFmpeg), log),
	}
	if cfg.Evaluation.Transport == config.TransportScript {
		components = append(components,
			component.NewCheck("scripts", cfg.Scripts.Dir, w.checkScripts(cfg.Scripts.EvaluatePath(), cfg.Scripts.AnalyzePath()), log))
	} else {
		components = append(components,
			component.NewCheck("scripts", cfg.Scripts.Dir, w.checkScripts(cfg.Scripts.AnalyzePath()), log))
	}
	for _, c := range components {
		if err := w.app.RegisterComponent(c); err != nil {
			return err
		}
	}

	w.app.OnStart(w.startTelemetry)
	return nil
}

func (w *wiring) startTelemetry(ctx context.Context) error {
	cfg := w.app.Cfg
	shutdown, err := observability.Setup(ctx, cfg.Telemetry, observability.Resource{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	w.app.OnStop(shutdown)

	m, err := observability.NewMetrics(otel.Meter(cfg.Name))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	w.metrics = m
	return nil
}

func (w *wiring) configure(_ context.Context, app *application) error {
	cfg := app.Cfg
	log := app.Logger

	evaluators, sidecar, err := w.evaluators()
	if err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	if sidecar != nil {
		sidecarCheck := component.NewCheck("evaluation-sidecar", cfg.Evaluation.Remote.URL, func(ctx context.Context) error {
			if !sidecar.IsAvailable(ctx) {
				return fmt.Errorf("no answer from %s/health", cfg.Evaluation.Remote.URL)
			}
			return nil
		}, log)
		if err := app.RegisterComponent(sidecarCheck); err != nil {
			return err
		}
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(w.metrics),
		orchestrator.WithTimeout(cfg.Evaluation.Timeout),
	}
	deps := api.Deps{
		Analyzer: analysis.NewAnalyzer(analysis.Config{
			Python:   cfg.Scripts.Python,
			Script:   cfg.Scripts.AnalyzePath(),
			DataRoot: cfg.Dataset.Root,
		}, w.runner, log, w.metrics),
		Runner:          w.runner,
		DataRoot:        cfg.Dataset.Root,
		DefaultBackends: cfg.Evaluation.DefaultBackends(),
		Logger:          log,
	}
	if store := w.archive.Store(); store != nil {
		opts = append(opts, orchestrator.WithFinishHook(store.Hook(log)))
		deps.Archive = store
	}
	orch := orchestrator.New(evaluators, opts...)
	deps.Runs = orch

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(endpoint.HealthConfig{
		Service:   cfg.Name,
		Transport: cfg.Evaluation.Transport,
		Checker:   app.Components.HealthAll,
		Run: func() endpoint.RunSummary {
			snap := orch.Snapshot()
			return endpoint.RunSummary{ID: snap.RunID, Phase: string(snap.Phase), Advisory: snap.Advisory}
		},
	})
	api.New(deps).Register(srv.GinEngine())

	if err := app.RegisterComponent(orch); err != nil {
		return err
	}
	return app.RegisterComponent(server.NewComponent(srv))
}

// evaluators registers one middleware-wrapped transport for every backend.
// The remote evaluator is returned for health probing.
func (w *wiring) evaluators() (*evaluation.Registry, evaluation.Evaluator, error) {
	cfg := w.app.Cfg
	log := w.app.Logger

	chain := []evaluation.Middleware{
		evaluation.WithLogging(log),
		evaluation.WithTracing(),
		evaluation.WithMetrics(w.metrics),
	}

	var base, sidecar evaluation.Evaluator
	switch cfg.Evaluation.Transport {
	case config.TransportRemote:
		r, err := remote.New(cfg.Evaluation.Remote)
		if err != nil {
			return nil, nil, err
		}
		sidecar, base = r, r
		chain = append(chain, evaluation.WithConcurrencyLimit(resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "evaluation-sidecar",
			MaxConcurrent: cfg.Evaluation.Remote.MaxConcurrent,
			MaxWait:       resilience.WaitForContext,
		})))
	default:
		// Script calls are bounded by the runner's own bulkhead.
		base = script.New(script.Config{
			Python:   cfg.Scripts.Python,
			Script:   cfg.Scripts.EvaluatePath(),
			DataRoot: cfg.Dataset.Root,
		}, w.runner)
	}

	reg := evaluation.NewRegistry()
	e := evaluation.Chain(chain...)(base)
	for _, b := range evaluation.AllBackends() {
		reg.Register(b, e)
	}
	return reg, sidecar, nil
}

// repair converts every mislabeled speaker_0m recording once.
func (w *wiring) repair(ctx context.Context) error {
	log := w.app.Logger.WithComponent("repair")
	root := w.app.Cfg.Dataset.Root

	files, err := dataset.Scan(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("no mislabeled recordings found", logger.Fields("root", root))
		return nil
	}

	report, err := dataset.Repair(ctx, w.runner, files)
	if err != nil {
		return err
	}
	log.Info("repair finished", logger.Fields("converted", len(report.Converted), "failed", len(report.Failed)))
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d recordings could not be converted", len(report.Failed), len(files))
	}
	return nil
}

func (w *wiring) checkDataset(context.Context) error {
	_, err := os.Stat(filepath.Join(w.app.Cfg.Dataset.Root, dataset.MetadataFile))
	return err
}

func (w *wiring) checkBinary(name string) func(context.Context) error {
	return func(context.Context) error {
		if !w.runner.Available(name) {
			return fmt.Errorf("%s not found in PATH", name)
		}
		return nil
	}
}

func (w *wiring) checkScripts(paths ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		errs := []error{w.checkBinary(w.app.Cfg.Scripts.Python)(ctx)}
		for _, p := range paths {
			if _, err := os.Stat(p); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
