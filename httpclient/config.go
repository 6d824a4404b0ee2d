package httpclient

import (
	"fmt"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds one request including the body read. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("httpclient: base URL must be http(s) (got: %q)", c.BaseURL)
	}
	return nil
}
