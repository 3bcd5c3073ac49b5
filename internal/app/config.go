package app

import (
	"appdeployer/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug forces DEBUG logging regardless of the configured level.
	Debug bool

	// ConfigPath is the YAML configuration file (optional).
	ConfigPath string

	// Command-line overrides; zero values leave the loaded value alone.
	TransportKind string
	ListenAddress string
	Workers       int

	// Worker is the loaded worker configuration. When set before
	// NewApplication, loading from ConfigPath is skipped.
	Worker *config.WorkerConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}

// applyOverrides copies the command-line overrides onto the worker config.
func (c *Config) applyOverrides(w *config.WorkerConfig) {
	if c.Debug {
		w.Logging.Level = "debug"
	}
	if c.TransportKind != "" {
		w.Transport.Kind = config.TransportKind(c.TransportKind)
	}
	if c.ListenAddress != "" {
		w.Server.ListenAddress = c.ListenAddress
	}
	if c.Workers > 0 {
		w.Reconciler.Workers = c.Workers
	}
}
