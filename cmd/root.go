package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/app"
	"github.com/giantswarm/sleuth/internal/formatting"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConnection indicates the capability provider could not be reached
	// or the connection was lost during a run.
	ExitCodeConnection = 2
	// ExitCodeQueryFailed indicates a query ran but at least one step failed.
	ExitCodeQueryFailed = 3
)

// Global flags shared by all subcommands.
var (
	// configPath specifies a custom configuration directory path.
	configPath string
	// debug enables verbose logging across the application.
	debug bool
	// outputFormat selects table, json or yaml output.
	outputFormat string
	// noColor disables colored tables and messages.
	noColor bool
)

// QueryFailedError is returned by one-shot commands when a query completed with
// failed steps. The record has already been printed and stored.
type QueryFailedError struct {
	SessionID string
	Failures  int
}

func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("query finished with %d failed step(s) (session %s)", e.Failures, e.SessionID)
}

// rootCmd represents the base command for the sleuth application.
// Without a subcommand it starts the interactive research console.
var rootCmd = &cobra.Command{
	Use:   "sleuth",
	Short: "Research questions with the tools of an MCP capability provider",
	Long: `sleuth turns a research question into a plan of tool calls, resource reads
and prompt retrievals against an MCP capability provider, runs the plan step by
step with fallbacks, and analyzes the results.

Every query is recorded in a research session that can be saved, listed and
loaded again later. Without a subcommand sleuth starts the interactive console.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runConsole,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// SIGINT and SIGTERM cancel the command context, which stops a running plan
// before its next step.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "sleuth version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if api.IsConnectionError(err) {
		return ExitCodeConnection
	}

	var queryFailed *QueryFailedError
	if errors.As(err, &queryFailed) {
		return ExitCodeQueryFailed
	}

	return ExitCodeError
}

// newApplication bootstraps sleuth with the global flags.
func newApplication(cmd *cobra.Command, offline bool, configure func(*app.Config)) (*app.Application, error) {
	cfg := app.NewConfig(debug, configPath)
	cfg.Offline = offline
	cfg.LogOutput = cmd.ErrOrStderr()
	if configure != nil {
		configure(cfg)
	}

	application, err := app.NewApplication(commandContext(cmd), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

// newFormatter creates the formatter selected by --output.
func newFormatter() (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return formatting.New(formatting.Options{Format: format, Color: !noColor}), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// init registers the global flags and the subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default is $HOME/.config/sleuth)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConsoleCmd())
	rootCmd.AddCommand(newResearchCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCapabilitiesCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newMockProviderCmd())
}
