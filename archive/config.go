package archive

import "fmt"

// DefaultBasePath is the default root directory for archived runs.
const DefaultBasePath = "./data/runs"

// Config holds run archive configuration.
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// BasePath is the root directory archived runs are written under.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

// Validate checks that the archive configuration is valid.
func (c *Config) Validate() error {
	if c.Enabled && c.BasePath == "" {
		return fmt.Errorf("archive.base_path is required when the archive is enabled")
	}
	return nil
}
