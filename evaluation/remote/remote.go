// Package remote implements evaluation.Evaluator against an HTTP sidecar
// that wraps evaluate.py.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"

	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/httpclient"
)

const (
	// Name is the transport name reported in logs and spans.
	Name = "remote"

	defaultURL           = "http://localhost:8390"
	defaultTimeout       = 30 * time.Minute
	defaultMaxConcurrent = 3
)

// Config holds configuration for the HTTP evaluation sidecar.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxConcurrent caps in-flight sidecar calls.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
}

// Validate checks the sidecar configuration.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("evaluation.remote.url must be an http(s) URL (got: %q)", c.URL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("evaluation.remote.timeout must be non-negative (got: %s)", c.Timeout)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("evaluation.remote.max_concurrent must be non-negative (got: %d)", c.MaxConcurrent)
	}
	return nil
}

// Evaluator POSTs evaluation requests to the sidecar.
type Evaluator struct {
	client *httpclient.Client
}

// New creates a remote evaluator.
func New(cfg Config) (*Evaluator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return &Evaluator{client: client}, nil
}

func (e *Evaluator) Name() string { return Name }

// IsAvailable checks if the sidecar answers its health endpoint.
func (e *Evaluator) IsAvailable(ctx context.Context) bool {
	_, err := e.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil
}

// Evaluate sends one evaluation request.
func (e *Evaluator) Evaluate(ctx context.Context, req evaluation.Request) (*gabs.Container, error) {
	resp, err := e.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/evaluate",
		Body:   req,
	})
	if err != nil {
		return nil, failure(req.Backend, err)
	}
	return evaluation.DecodeReply(req.Backend, resp.Body, nil)
}

// failure maps a client error onto the evaluation failure kinds. Caller
// cancellation is returned as the bare context error.
func failure(backend evaluation.Backend, err error) error {
	e, ok := httpclient.AsError(err)
	switch {
	case !ok:
		return evaluation.TransportFailure(backend, err, "")
	case e.Code == httpclient.ErrCodeCanceled:
		return fmt.Errorf("evaluation request: %w", e.Err)
	case e.Code == httpclient.ErrCodeTimeout:
		return &evaluation.Failure{
			Kind:    evaluation.FailureTimeout,
			Backend: backend,
			Message: "sidecar request timed out",
			Cause:   err,
		}
	case e.StatusCode > 0:
		return statusFailure(backend, e)
	default:
		return evaluation.TransportFailure(backend, fmt.Errorf("evaluation request: %w", err), "")
	}
}

// statusFailure builds the transport failure for an error status, using the
// body's error and logs when it is a JSON object.
func statusFailure(backend evaluation.Backend, e *httpclient.Error) *evaluation.Failure {
	cause := fmt.Errorf("sidecar returned status %d: %w", e.StatusCode, e)
	f := evaluation.TransportFailure(backend, cause, "")
	f.Message = fmt.Sprintf("sidecar returned status %d", e.StatusCode)

	parsed, err := evaluation.ParseObject(e.Body)
	if err != nil {
		if s := strings.TrimSpace(string(e.Body)); s != "" {
			f.Diagnostics = "raw response: " + evaluation.Truncate(s, evaluation.MaxRawPayload)
		}
		return f
	}
	if msg, ok := evaluation.ErrorField(parsed); ok {
		f.Message = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	f.Diagnostics = evaluation.Diagnostics(parsed, nil)
	return f
}
