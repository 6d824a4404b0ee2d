package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/archive"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation/remote"
	"github.com/souadELmaazouzi/audio-processing-and-ui/observability"
	"github.com/souadELmaazouzi/audio-processing-and-ui/process"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server"
)

// Evaluation transports.
const (
	TransportScript = "script"
	TransportRemote = "remote"
)

// AppConfig is the full dashboard configuration.
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server     server.Config        `yaml:"server" mapstructure:"server"`
	Dataset    DatasetConfig        `yaml:"dataset" mapstructure:"dataset"`
	Scripts    ScriptsConfig        `yaml:"scripts" mapstructure:"scripts"`
	Evaluation EvaluationConfig     `yaml:"evaluation" mapstructure:"evaluation"`
	Archive    archive.Config       `yaml:"archive" mapstructure:"archive"`
	Telemetry  observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// DatasetConfig locates the speech dataset.
type DatasetConfig struct {
	// Root holds metadata.csv and the audio/ tree.
	Root string `yaml:"root" mapstructure:"root"`
}

// ScriptsConfig locates the Python analysis scripts.
type ScriptsConfig struct {
	Python string `yaml:"python" mapstructure:"python"`
	// Dir is joined with relative Evaluate and Analyze paths.
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Evaluate string `yaml:"evaluate" mapstructure:"evaluate"`
	Analyze  string `yaml:"analyze" mapstructure:"analyze"`
	// Process configures the shared runner. MaxConcurrent caps how many
	// script processes run at once across evaluation and analysis.
	Process process.Config `yaml:",inline" mapstructure:",squash"`
}

// EvaluatePath returns the evaluate script path, resolved against Dir.
func (c ScriptsConfig) EvaluatePath() string { return c.resolve(c.Evaluate) }

// AnalyzePath returns the analyze script path, resolved against Dir.
func (c ScriptsConfig) AnalyzePath() string { return c.resolve(c.Analyze) }

func (c ScriptsConfig) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// EvaluationConfig selects how backends are reached.
type EvaluationConfig struct {
	// Transport is "script" (spawn evaluate.py) or "remote" (HTTP sidecar).
	Transport string `yaml:"transport" mapstructure:"transport"`
	// Timeout bounds each backend call. A call that runs out of time ends in
	// the error state.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Backends is the default backend set offered to the UI.
	Backends []string      `yaml:"backends" mapstructure:"backends"`
	Remote   remote.Config `yaml:"remote" mapstructure:"remote"`
}

// DefaultBackends returns the configured backends, parsed.
func (c EvaluationConfig) DefaultBackends() []evaluation.Backend {
	out := make([]evaluation.Backend, 0, len(c.Backends))
	for _, s := range c.Backends {
		if b, err := evaluation.ParseBackend(s); err == nil {
			out = append(out, b)
		}
	}
	return out
}

// ApplyDefaults fills every section's zero values.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Dataset.Root == "" {
		c.Dataset.Root = "./data"
	}

	if c.Scripts.Python == "" {
		c.Scripts.Python = "python3"
	}
	if c.Scripts.Dir == "" {
		c.Scripts.Dir = "./scripts"
	}
	if c.Scripts.Evaluate == "" {
		c.Scripts.Evaluate = "evaluate.py"
	}
	if c.Scripts.Analyze == "" {
		c.Scripts.Analyze = "analyze.py"
	}
	if c.Scripts.Process.MaxConcurrent == 0 {
		c.Scripts.Process.MaxConcurrent = 3
	}
	c.Scripts.Process.ApplyDefaults()

	if c.Evaluation.Transport == "" {
		c.Evaluation.Transport = TransportScript
	}
	if c.Evaluation.Timeout == 0 {
		c.Evaluation.Timeout = 30 * time.Minute
	}
	if len(c.Evaluation.Backends) == 0 {
		for _, b := range evaluation.AllBackends() {
			c.Evaluation.Backends = append(c.Evaluation.Backends, string(b))
		}
	}
	c.Evaluation.Remote.ApplyDefaults()

	c.Archive.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks every section and joins the errors.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.ServiceConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Dataset.Root == "" {
		errs = append(errs, fmt.Errorf("dataset.root is required"))
	}
	if c.Scripts.Python == "" {
		errs = append(errs, fmt.Errorf("scripts.python is required"))
	}
	if err := c.Scripts.Process.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scripts: %w", err))
	}

	transports := []string{TransportScript, TransportRemote}
	if !slices.Contains(transports, c.Evaluation.Transport) {
		errs = append(errs, fmt.Errorf("evaluation.transport must be one of %v (got: %s)", transports, c.Evaluation.Transport))
	}
	if c.Evaluation.Timeout < 0 {
		errs = append(errs, fmt.Errorf("evaluation.timeout must be non-negative (got: %s)", c.Evaluation.Timeout))
	}
	for _, b := range c.Evaluation.Backends {
		if _, err := evaluation.ParseBackend(b); err != nil {
			errs = append(errs, fmt.Errorf("evaluation.backends: %w", err))
		}
	}
	if c.Evaluation.Transport == TransportRemote {
		if err := c.Evaluation.Remote.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.Archive.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
