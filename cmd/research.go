package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/giantswarm/sleuth/internal/app"
	"github.com/giantswarm/sleuth/internal/console"
	"github.com/giantswarm/sleuth/internal/formatting"
	"github.com/giantswarm/sleuth/internal/session"

	"github.com/spf13/cobra"
)

// newResearchCmd creates the one-shot research command. The query runs in a
// new session which is stored like any console session.
func newResearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "research <query>",
		Short: "Run a single research query and print the result",
		Long: `Plans the query against the provider's capabilities, runs the plan,
analyzes the result and prints it. The query is recorded in a new session.

The command exits with code 3 when at least one step failed and with code 2
when the provider connection was lost.`,
		Example: `  sleuth research "What changed in the latest Go release?"
  sleuth research -o json kubernetes gateway api status`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResearch,
	}
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	progress := newOneShotProgress(cmd)

	application, err := newApplication(cmd, false, func(cfg *app.Config) {
		cfg.Callback = progress
	})
	if err != nil {
		return err
	}
	defer application.Close()

	progress.Start("Planning research...")
	record, err := application.Research().Search(commandContext(cmd), query)
	progress.Stop()

	return printRecord(cmd, formatter, record, err)
}

// newOneShotProgress shows a spinner on stderr for table output on a terminal.
func newOneShotProgress(cmd *cobra.Command) *console.Progress {
	enabled := isTerminal(os.Stderr) && (outputFormat == "" || outputFormat == string(formatting.FormatTable))
	return console.NewProgress(cmd.ErrOrStderr(), enabled)
}

// printRecord prints record, if any, and maps a failed query to a QueryFailedError.
func printRecord(cmd *cobra.Command, formatter formatting.Formatter, record *session.Record, runErr error) error {
	if record != nil {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRecord(record))
	}
	if runErr != nil {
		return runErr
	}
	if record != nil && record.Result != nil && !record.Succeeded() {
		return &QueryFailedError{SessionID: record.SessionID, Failures: record.Result.FailureCount}
	}
	return nil
}
