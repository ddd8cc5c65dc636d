// Package config provides configuration loading for the storefront client.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full client configuration.
type Config struct {
	API      APIConfig     `mapstructure:"api" yaml:"api"`
	Storage  StorageConfig `mapstructure:"storage" yaml:"storage"`
	LogLevel string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// APIConfig configures the remote REST API connection.
type APIConfig struct {
	// BaseURL is the API base, e.g. "http://localhost:8000/api".
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StorageConfig configures the durable local state file.
type StorageConfig struct {
	// Path is the state file location. "~" expands to the user home.
	Path string `mapstructure:"path" yaml:"path" validate:"required,abs_path"`
}

// Default values applied by SetDefaults.
const (
	DefaultBaseURL  = "http://localhost:8000/api"
	DefaultTimeout  = 15 * time.Second
	DefaultLogLevel = "info"
)

// SetDefaults fills unset optional fields and expands "~" in the storage
// path. Call before Validate.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(homeDir(), ".storefront", "state.json")
	} else if strings.HasPrefix(c.Storage.Path, "~/") {
		c.Storage.Path = filepath.Join(homeDir(), c.Storage.Path[2:])
	}
}

// homeDir returns the user home directory, falling back to the working
// directory when the home cannot be determined.
func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
