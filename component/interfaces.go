package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents a lifecycle-managed part of the service.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information for the startup log.
type Description struct {
	// Name is the human-readable display name (e.g., "HTTP Server", "Run Archive").
	// If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "server", "storage", "orchestrator", "check".
	Type string
	// Details is a human-readable one-liner shown in the startup summary.
	// Examples: "0.0.0.0:8080", "path=./data/runs", "timeout=30m0s"
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable is optionally implemented by Components to provide
// startup summary information. Registry.Summary collects it.
type Describable interface {
	Describe() Description
}

// Route holds a single HTTP route for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is optionally implemented by server components to
// auto-report registered HTTP routes for the startup summary.
type RouteProvider interface {
	Routes() []Route
}
