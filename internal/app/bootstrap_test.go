package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/giantswarm/sleuth/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestNewApplication_Offline(t *testing.T) {
	dir := writeConfig(t, `
store:
  driver: file
  path: research
llm:
  provider: anthropic
  apiKey: ""
`)
	t.Setenv(config.EnvAnthropicKey, "")

	var logs bytes.Buffer
	cfg := NewConfig(false, dir)
	cfg.Offline = true
	cfg.LogOutput = &logs

	application, err := NewApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, application.Close()) }()

	services := application.Services()
	assert.Nil(t, services.Provider)
	assert.Nil(t, services.Planner)
	assert.Nil(t, services.Analyzer)
	require.NotNil(t, application.Research())
	assert.Equal(t, filepath.Join(dir, "research"), application.SleuthConfig().Store.Path)
	assert.Contains(t, logs.String(), "Language model unavailable")

	info, err := application.Research().NewSession(context.Background())
	require.NoError(t, err)

	sessions, err := application.Research().Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, info.ID, sessions[0].ID)
}

func TestNewApplication_OfflineSearchFailsStepsWithoutProvider(t *testing.T) {
	dir := writeConfig(t, "store:\n  driver: file\n")
	t.Setenv(config.EnvAnthropicKey, "")

	cfg := NewConfig(false, dir)
	cfg.Offline = true
	cfg.LogOutput = &bytes.Buffer{}

	application, err := NewApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer application.Close()

	record, err := application.Research().Search(context.Background(), "anything")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Result.Succeeded())
	assert.Empty(t, record.Result.Outcomes)
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	dir := writeConfig(t, "store:\n  driver: [broken\n")

	cfg := NewConfig(false, dir)
	cfg.Offline = true
	cfg.LogOutput = &bytes.Buffer{}

	_, err := NewApplication(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestNewApplication_ProviderConnectionFails(t *testing.T) {
	cfg := NewConfig(false, t.TempDir())
	cfg.LogOutput = &bytes.Buffer{}

	defaults := config.GetDefaultConfig()
	defaults.Store = config.StoreConfig{Driver: config.StoreDriverFile, Path: filepath.Join(cfg.ConfigPath, "sessions")}
	defaults.Provider = config.ProviderConfig{Transport: config.TransportStdio, Command: filepath.Join(cfg.ConfigPath, "does-not-exist")}
	cfg.SleuthConfig = &defaults

	_, err := NewApplication(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize services")
}

func TestNewApplication_LogDirectory(t *testing.T) {
	dir := writeConfig(t, "store:\n  driver: file\nlogging:\n  level: debug\n  dir: logs\n")
	t.Setenv(config.EnvAnthropicKey, "")

	cfg := NewConfig(false, dir)
	cfg.Offline = true
	cfg.LogOutput = &bytes.Buffer{}

	application, err := NewApplication(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, application.Close())

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInitializeServices_RequiresConfig(t *testing.T) {
	_, err := InitializeServices(context.Background(), &Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration not loaded")
}
