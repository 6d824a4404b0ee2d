package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/souadELmaazouzi/audio-processing-and-ui/version"
)

var startTime = time.Now()

// InfoReport is the /info body.
type InfoReport struct {
	Service    string        `json:"service"`
	Transport  string        `json:"transport,omitempty"`
	Build      version.Build `json:"build"`
	Goroutines int           `json:"goroutines"`
	Uptime     string        `json:"uptime"`
	Timestamp  string        `json:"timestamp"`
}

// Info returns the /info handler.
func Info(cfg HealthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoReport{
			Service:    cfg.Service,
			Transport:  cfg.Transport,
			Build:      version.Current(),
			Goroutines: runtime.NumGoroutine(),
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		})
	}
}
