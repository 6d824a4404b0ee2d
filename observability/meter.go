package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg Config, res Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	r, err := newResource(res)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(r),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Metrics holds the dashboard's metric instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	evaluationCalls    metric.Int64Counter
	evaluationDuration metric.Float64Histogram
	runs               metric.Int64Counter
	analysisCalls      metric.Int64Counter
}

// NewMetrics creates the instruments on the given meter. Pass
// otel.Meter(...) to use the global provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	evaluationCalls, err := meter.Int64Counter("evaluation.calls",
		metric.WithDescription("Backend evaluation calls by backend and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation.calls counter: %w", err)
	}
	evaluationDuration, err := meter.Float64Histogram("evaluation.duration",
		metric.WithDescription("Duration of backend evaluation calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation.duration histogram: %w", err)
	}
	runs, err := meter.Int64Counter("evaluation.runs",
		metric.WithDescription("Finished evaluation runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation.runs counter: %w", err)
	}
	analysisCalls, err := meter.Int64Counter("analysis.calls",
		metric.WithDescription("Single-utterance analysis calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating analysis.calls counter: %w", err)
	}
	return &Metrics{
		evaluationCalls:    evaluationCalls,
		evaluationDuration: evaluationDuration,
		runs:               runs,
		analysisCalls:      analysisCalls,
	}, nil
}

// DefaultMetrics creates instruments on the global meter provider.
func DefaultMetrics() (*Metrics, error) {
	return NewMetrics(otel.Meter(instrumentationName))
}

// RecordEvaluation records one settled backend call.
func (m *Metrics) RecordEvaluation(ctx context.Context, backend, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.evaluationCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
	m.evaluationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
	))
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordAnalysis records one single-utterance analysis call.
func (m *Metrics) RecordAnalysis(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.analysisCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
