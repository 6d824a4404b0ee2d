package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/resilience"
)

// Config configures a Runner.
type Config struct {
	// GracePeriod is the SIGTERM to SIGKILL delay applied to every command.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// MaxConcurrent caps how many processes run at once. Zero means unlimited.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// Env is appended to the environment of every command (e.g. VOSK_PATH=...).
	Env []string `yaml:"env" mapstructure:"env"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.GracePeriod == 0 {
		c.GracePeriod = defaultGracePeriod
	}
}

// Validate checks the runner configuration.
func (c *Config) Validate() error {
	if c.GracePeriod < 0 {
		return fmt.Errorf("process.grace_period must be non-negative (got: %s)", c.GracePeriod)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("process.max_concurrent must be non-negative (got: %d)", c.MaxConcurrent)
	}
	return nil
}

// Runner executes commands with shared defaults and an optional limit on
// concurrently running processes.
type Runner struct {
	config  Config
	limiter *resilience.Bulkhead
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	cfg.ApplyDefaults()
	r := &Runner{config: cfg}
	if cfg.MaxConcurrent > 0 {
		r.limiter = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "process",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       resilience.WaitForContext,
		})
	}
	return r
}

// Run executes cmd, waiting for a free slot first when a limit is configured.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = r.config.GracePeriod
	}
	if len(r.config.Env) > 0 {
		cmd.Env = append(append([]string(nil), r.config.Env...), cmd.Env...)
	}
	if r.limiter == nil {
		return Run(ctx, cmd)
	}

	release, err := r.limiter.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrKilled, ctx.Err())
		}
		return nil, fmt.Errorf("process: waiting for slot: %w", err)
	}
	defer release()
	return Run(ctx, cmd)
}

// RunJSON encodes payload as the process's stdin and runs cmd.
func (r *Runner) RunJSON(ctx context.Context, cmd Command, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("process: encode stdin: %w", err)
	}
	cmd.Stdin = bytes.NewReader(body)
	return r.Run(ctx, cmd)
}

// Available reports whether binary can be resolved to an executable.
func (r *Runner) Available(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
