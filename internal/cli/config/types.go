// Package config provides configuration management for the simtrace CLI.
//
// Shared defaults and config file discovery live in internal/config; this
// package adds the CLI-specific fields, the koanf loader and the logger that
// commands read from their context.
package config

import sharedcfg "github.com/leapstack-labs/simtrace/internal/config"

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     sharedcfg.DefaultPort,
		AutoOpen: sharedcfg.DefaultAutoOpen,
		Watch:    sharedcfg.DefaultUIWatch,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = sharedcfg.DefaultPort
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	Dataset      string    `koanf:"dataset"`
	Verbose      bool      `koanf:"verbose"`
	OutputFormat string    `koanf:"output"`
	LogLevel     string    `koanf:"log_level"`
	UI           *UIConfig `koanf:"ui"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDataset  = sharedcfg.DefaultDataset
	DefaultOutput   = sharedcfg.DefaultOutput
	DefaultLogLevel = sharedcfg.DefaultLogLevel
)
