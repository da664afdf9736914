package app

import (
	"io"

	"github.com/giantswarm/sleuth/internal/config"
	"github.com/giantswarm/sleuth/internal/execution"
)

// Config holds the application configuration
type Config struct {
	// Debug forces debug logging regardless of the configured level
	Debug bool

	// Custom configuration directory (optional)
	// When empty, ~/.config/sleuth is used
	ConfigPath string

	// Offline skips connecting to the capability provider. Commands that only
	// read stored sessions use it.
	Offline bool

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer

	// Callback receives progress events of every plan run (optional)
	Callback execution.EventCallback

	// Loaded sleuth configuration. When set, NewApplication skips loading.
	SleuthConfig *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}
