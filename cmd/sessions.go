package cmd

import (
	"fmt"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/session"

	"github.com/spf13/cobra"
)

// newSessionsCmd creates the command group for stored research sessions.
// None of its subcommands connects to the provider.
func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect stored research sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE:  runSessionsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the statistics of a stored session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "summary <session-id>",
		Short: "Show the summary of a stored session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsSummary,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "records <session-id>",
		Short: "Print every query recorded in a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsRecords,
	})

	return cmd
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	application, err := newApplication(cmd, true, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	sessions, err := application.Research().Sessions(commandContext(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSessions(sessions))
	return nil
}

// runSessionsStatus reports the stored statistics together with the capability
// snapshot taken when the session was created.
func runSessionsStatus(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	application, err := newApplication(cmd, true, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	info, err := application.Research().Session(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	counts := make(map[capability.Kind]int, len(capability.Kinds))
	for _, c := range info.Capabilities {
		counts[c.Kind]++
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(session.NewStatusReport(info.Stats, counts)))
	return nil
}

func runSessionsSummary(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	application, err := newApplication(cmd, true, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	summary, err := application.Research().SummaryOf(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSummary(summary))
	return nil
}

func runSessionsRecords(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	application, err := newApplication(cmd, true, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	records, err := application.Research().Records(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s has no recorded queries.\n", args[0])
		return nil
	}
	for i := range records {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRecord(&records[i]))
	}
	return nil
}
