package archive

import (
	"context"
	"fmt"
	"os"

	"github.com/souadELmaazouzi/audio-processing-and-ui/component"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// Component wraps Store for lifecycle management.
type Component struct {
	store *Store
	cfg   Config
	log   *logger.Logger
}

// NewComponent creates an archive component for the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("archive"),
	}
}

// Store returns the underlying Store, or nil if disabled or not started.
func (c *Component) Store() *Store {
	return c.store
}

var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "archive" }

// Start creates the archive directory.
func (c *Component) Start(_ context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("run archive is disabled")
		return nil
	}
	s, err := NewStore(c.cfg.BasePath)
	if err != nil {
		return fmt.Errorf("archive start: %w", err)
	}
	c.store = s
	return nil
}

// Stop releases the store.
func (c *Component) Stop(_ context.Context) error {
	c.store = nil
	return nil
}

// Health checks that the archive directory is still there.
func (c *Component) Health(_ context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	if c.store == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "archive not initialized"}
	}
	if _, err := os.Stat(c.store.BasePath()); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: fmt.Sprintf("archive directory unavailable: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns summary info for the startup display.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = "path=" + c.cfg.BasePath
	}
	return component.Description{
		Name:    "Run Archive",
		Type:    "storage",
		Details: details,
	}
}
