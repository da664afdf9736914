package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/giantswarm/sleuth/internal/config"
	"github.com/giantswarm/sleuth/internal/research"
	"github.com/giantswarm/sleuth/pkg/logging"
)

// Application bootstraps sleuth: it loads configuration, sets up logging and
// wires the provider session, capability registry, execution engine, language
// model and record store into a research.Service.
//
// Example usage:
//
//	cfg := app.NewConfig(false, "")
//	application, err := app.NewApplication(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to start sleuth: %w", err)
//	}
//	defer application.Close()
//	record, err := application.Research().Search(ctx, "latest Go release")
type Application struct {
	config   *Config
	services *Services
	closeLog func() error
}

// NewApplication performs the bootstrap sequence:
//
//  1. Initializes logging on Config.LogOutput
//  2. Loads config.yaml from Config.ConfigPath (or ~/.config/sleuth)
//  3. Re-initializes logging with the configured level and log directory
//  4. Initializes all services, connecting to the provider unless Offline is set
//
// The provider connection is bounded by ctx and the configured init timeout.
func NewApplication(ctx context.Context, cfg *Config) (*Application, error) {
	logOutput := cfg.LogOutput
	if logOutput == nil {
		logOutput = os.Stderr
	}

	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, logOutput)

	if cfg.SleuthConfig == nil {
		if cfg.ConfigPath == "" {
			path, err := config.GetDefaultConfigPath()
			if err != nil {
				return nil, err
			}
			cfg.ConfigPath = path
		}

		sleuthCfg, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		cfg.SleuthConfig = &sleuthCfg
	}

	closeLog, err := configureLogging(cfg, logOutput)
	if err != nil {
		return nil, err
	}

	services, err := InitializeServices(ctx, cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		if closeLog != nil {
			_ = closeLog()
		}
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
		closeLog: closeLog,
	}, nil
}

// configureLogging applies the configured level unless --debug was given and
// adds a log file when a log directory is configured.
func configureLogging(cfg *Config, output io.Writer) (func() error, error) {
	level := logging.LevelDebug
	if !cfg.Debug {
		parsed, err := logging.ParseLevel(cfg.SleuthConfig.Logging.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	if cfg.SleuthConfig.Logging.Dir == "" {
		logging.InitForCLI(level, output)
		return nil, nil
	}

	_, closeFn, err := logging.InitWithFile(level, output, cfg.SleuthConfig.Logging.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log file: %w", err)
	}
	return closeFn, nil
}

// Research returns the research service.
func (a *Application) Research() *research.Service {
	return a.services.Research
}

// Services returns all initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// SleuthConfig returns the loaded configuration.
func (a *Application) SleuthConfig() config.Config {
	return *a.config.SleuthConfig
}

// Close disconnects the provider, closes the store and the log file.
func (a *Application) Close() error {
	err := a.services.Close()
	if a.closeLog != nil {
		if closeErr := a.closeLog(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
