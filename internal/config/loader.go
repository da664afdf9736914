package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/giantswarm/sleuth/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/sleuth"
	configFileName = "config.yaml"
)

// Environment variables read by ApplyEnv.
const (
	EnvLLMProvider  = "SLEUTH_LLM_PROVIDER"
	EnvLLMModel     = "SLEUTH_LLM_MODEL"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
)

// GetDefaultConfigPath returns ~/.config/sleuth.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath on top of the defaults, applies
// environment overrides and resolves relative paths against configPath.
// A missing config.yaml is not an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, NewConfigurationError(configFilePath, "io", err.Error())
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, NewConfigurationError(configFilePath, "parse", err.Error())
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	config.ApplyEnv(os.Getenv)
	config.resolvePaths(configPath)

	if err := config.Validate(); err != nil {
		return Config{}, NewConfigurationError(configFilePath, "validation", err.Error())
	}
	return config, nil
}

// ApplyEnv applies environment overrides using getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvLLMProvider); v != "" {
		c.LLM.Provider = strings.ToLower(v)
		if c.LLM.Provider == LLMProviderOpenAI && c.LLM.Model == DefaultAnthropicModel {
			c.LLM.Model = DefaultOpenAIModel
		}
	}
	if v := getenv(EnvLLMModel); v != "" {
		c.LLM.Model = v
	}
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case LLMProviderAnthropic:
			c.LLM.APIKey = getenv(EnvAnthropicKey)
		case LLMProviderOpenAI:
			c.LLM.APIKey = getenv(EnvOpenAIKey)
		}
	}
}

func (c *Config) resolvePaths(configPath string) {
	if c.Store.Path == "" {
		if c.Store.Driver == StoreDriverFile {
			c.Store.Path = defaultFileDir
		} else {
			c.Store.Path = defaultSQLiteFile
		}
	}
	if !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(configPath, c.Store.Path)
	}
	if c.Console.HistoryFile == "" {
		c.Console.HistoryFile = defaultHistory
	}
	if !filepath.IsAbs(c.Console.HistoryFile) {
		c.Console.HistoryFile = filepath.Join(configPath, c.Console.HistoryFile)
	}
	if c.Logging.Dir != "" && !filepath.IsAbs(c.Logging.Dir) {
		c.Logging.Dir = filepath.Join(configPath, c.Logging.Dir)
	}
}

// ProviderEnv returns the provider environment: PassEnv values read through
// getenv, overridden by explicit Env entries. Unset PassEnv variables are skipped.
func (p ProviderConfig) ProviderEnv(getenv func(string) string) map[string]string {
	env := make(map[string]string, len(p.Env)+len(p.PassEnv))
	for _, name := range p.PassEnv {
		if v := getenv(name); v != "" {
			env[name] = v
		}
	}
	for k, v := range p.Env {
		env[k] = v
	}
	return env
}
