package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giantswarm/sleuth/internal/api"

	"github.com/spf13/cobra"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if GetVersion() != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "sleuth" {
		t.Errorf("Expected Use to be 'sleuth', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}

	if rootCmd.RunE == nil {
		t.Error("Expected root command to start the console")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "sleuth version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	expected := "sleuth version 1.0.0\n"
	if buf.String() != expected {
		t.Errorf("Expected version output %q, got %q", expected, buf.String())
	}
}

func TestSubcommands(t *testing.T) {
	expectedCommands := []string{"version", "console", "research", "run", "capabilities", "sessions", "mock-provider"}
	foundCommands := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"config-path", "debug", "output", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag --%s", name)
		}
	}
	if rootCmd.PersistentFlags().ShorthandLookup("o") == nil {
		t.Error("Expected -o shorthand for --output")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"generic error", errors.New("boom"), ExitCodeError},
		{"connection error", api.NewConnectionError("provider", errors.New("broken pipe")), ExitCodeConnection},
		{"wrapped connection error", fmt.Errorf("search failed: %w", api.NewConnectionError("provider", nil)), ExitCodeConnection},
		{"failed query", &QueryFailedError{SessionID: "s1", Failures: 2}, ExitCodeQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.expected {
				t.Errorf("Expected exit code %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestQueryFailedError(t *testing.T) {
	err := &QueryFailedError{SessionID: "abc", Failures: 1}
	if !strings.Contains(err.Error(), "1 failed step") || !strings.Contains(err.Error(), "abc") {
		t.Errorf("Unexpected error message: %q", err.Error())
	}
}

// executeRoot runs the root command with args and resets the global flags afterwards.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, debug, outputFormat, noColor = "", false, "table", false
		runGoal = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func offlineConfigDir(t *testing.T) string {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	dir := t.TempDir()
	content := "store:\n  driver: file\n  path: sessions\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestSessionsList_Empty(t *testing.T) {
	dir := offlineConfigDir(t)

	stdout, _, err := executeRoot(t, "--config-path", dir, "--no-color", "sessions", "list")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No sessions found") {
		t.Errorf("Expected empty session message, got %q", stdout)
	}
}

func TestSessionsList_JSON(t *testing.T) {
	dir := offlineConfigDir(t)

	stdout, _, err := executeRoot(t, "--config-path", dir, "-o", "json", "sessions", "list")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(stdout, `"count": 0`) {
		t.Errorf("Expected JSON session list, got %q", stdout)
	}
}

func TestSessionsSummary_NotFound(t *testing.T) {
	dir := offlineConfigDir(t)

	_, _, err := executeRoot(t, "--config-path", dir, "sessions", "summary", "missing")
	if err == nil {
		t.Fatal("Expected an error for a missing session")
	}
	if !api.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	dir := offlineConfigDir(t)

	_, _, err := executeRoot(t, "--config-path", dir, "-o", "xml", "sessions", "list")
	if err == nil {
		t.Fatal("Expected an error for an unsupported output format")
	}
}

func TestCapabilities_InvalidKind(t *testing.T) {
	_, _, err := executeRoot(t, "capabilities", "widgets")
	if err == nil || !strings.Contains(err.Error(), "unknown capability kind") {
		t.Errorf("Expected unknown kind error, got %v", err)
	}
}

func TestRun_MissingPlanFile(t *testing.T) {
	_, _, err := executeRoot(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected an error for a missing plan file")
	}
}

func TestMockProvider_RequiresConfig(t *testing.T) {
	_, _, err := executeRoot(t, "mock-provider")
	if err == nil || !strings.Contains(err.Error(), "config") {
		t.Errorf("Expected required flag error, got %v", err)
	}
}
