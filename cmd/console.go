package cmd

import (
	"os"

	"github.com/giantswarm/sleuth/internal/app"
	"github.com/giantswarm/sleuth/internal/console"
	"github.com/giantswarm/sleuth/internal/research"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var _ console.Service = (*research.Service)(nil)

// newConsoleCmd creates the command that starts the interactive research console.
// It is also what the root command runs when no subcommand is given.
func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Start the interactive research console",
		Long: `Starts an interactive shell connected to the capability provider.

Type a command such as 'search <query>', 'summary', 'save' or 'load <session-id>'.
Commands and session IDs complete with TAB, and history is kept between runs.`,
		Args: cobra.NoArgs,
		RunE: runConsole,
	}
}

func runConsole(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	interactive := isTerminal(os.Stdout)
	progress := console.NewProgress(out, interactive)

	application, err := newApplication(cmd, false, func(cfg *app.Config) {
		cfg.Callback = progress
	})
	if err != nil {
		return err
	}
	defer application.Close()

	c := console.New(application.Research(), console.Options{
		HistoryFile: application.SleuthConfig().Console.HistoryFile,
		Output:      out,
		Color:       !noColor && interactive,
		Progress:    progress,
	})
	return c.Run(commandContext(cmd))
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return readline.IsTerminal(int(f.Fd()))
}
