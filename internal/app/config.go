package app

import (
	"io"

	"sentinelmind/internal/config"
)

// Config holds the runtime settings supplied by the command layer.
type Config struct {
	// ConfigPath is an optional YAML configuration file.
	ConfigPath string

	// Overrides applied on top of the loaded configuration. Zero values
	// leave the loaded value untouched.
	Transport string
	Port      int
	LogLevel  string

	// Version is reported to MCP clients.
	Version string

	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup config.LookupFunc
	// LogOutput receives log records when no log file is configured.
	// Defaults to os.Stderr.
	LogOutput io.Writer

	// Settings is populated by NewApplication.
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(configPath, version string) *Config {
	return &Config{
		ConfigPath: configPath,
		Version:    version,
	}
}

// applyOverrides copies non-zero command line overrides into cfg.
func (c *Config) applyOverrides(cfg *config.Config) {
	if c.Transport != "" {
		cfg.Server.Transport = c.Transport
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
}
