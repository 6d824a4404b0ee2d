// Package observability wires OpenTelemetry tracing and metrics for the
// dashboard. Exporters speak OTLP over HTTP and are only started when
// telemetry is enabled; otherwise the global no-op providers stay in place
// and every span or instrument call is free.
package observability
