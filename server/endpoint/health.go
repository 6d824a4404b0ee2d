package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/souadELmaazouzi/audio-processing-and-ui/component"
)

// HealthChecker returns the health of registered components.
type HealthChecker func(ctx context.Context) []component.Health

// RunSummary is the evaluation run section of the health report.
type RunSummary struct {
	ID       string `json:"id,omitempty"`
	Phase    string `json:"phase"`
	Advisory string `json:"advisory,omitempty"`
}

// HealthConfig selects what /health and /info report.
type HealthConfig struct {
	Service string
	// Transport is how backends are reached, "script" or "remote".
	Transport string
	Checker   HealthChecker
	// Run reports the current evaluation run. Nil omits the section.
	Run func() RunSummary
}

// HealthReport is the /health body.
type HealthReport struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Transport  string                 `json:"transport,omitempty"`
	Run        *RunSummary            `json:"run,omitempty"`
	Components []component.Health     `json:"components"`
	Timestamp  string                 `json:"timestamp"`
}

// Health returns the /health handler. The worst component status becomes
// the service status and an unhealthy one answers 503. The run section
// does not affect the status.
func Health(cfg HealthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := HealthReport{
			Status:     component.StatusHealthy,
			Service:    cfg.Service,
			Transport:  cfg.Transport,
			Components: []component.Health{},
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		}
		if cfg.Checker != nil {
			report.Components = cfg.Checker(c.Request.Context())
			report.Status = worst(report.Components)
		}
		if cfg.Run != nil {
			run := cfg.Run()
			report.Run = &run
		}

		code := http.StatusOK
		if report.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

func worst(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}
