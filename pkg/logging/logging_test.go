package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.SlogLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Debug("Test", "hidden %d", 1)
	Info("Registry", "discovered %d capabilities", 3)
	Error("Engine", errors.New("boom"), "run failed")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "discovered 3 capabilities")
	assert.Contains(t, output, "subsystem=Registry")
	assert.Contains(t, output, "error=boom")
}

func TestInitWithFile(t *testing.T) {
	var buf bytes.Buffer
	dir := filepath.Join(t.TempDir(), "logs")

	path, closeFn, err := InitWithFile(LevelDebug, &buf, dir)
	require.NoError(t, err)
	defer func() {
		InitForCLI(LevelInfo, os.Stderr)
	}()

	Warn("Console", "written to both sinks")
	require.NoError(t, closeFn())

	assert.True(t, strings.HasPrefix(filepath.Base(path), LogFilePrefix))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to both sinks")
	assert.Contains(t, buf.String(), "written to both sinks")
}
