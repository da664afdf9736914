package cmd

import (
	"fmt"

	"github.com/giantswarm/sleuth/internal/provider/mock"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	mockConfigFile string
	mockWatch      bool
)

// newMockProviderCmd creates the command that serves a scripted MCP provider
// over stdio. It is meant to be configured as the provider command:
//
//	provider:
//	  command: sleuth
//	  args: [mock-provider, --config, tools.yaml, --watch]
func newMockProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-provider",
		Short: "Serve tools, resources and prompts from a YAML file over stdio",
		Long: `Runs an MCP server on stdin/stdout whose tools, resources and prompts are
defined in a YAML file. Tool responses are Go templates with sprig functions and
can depend on the call arguments through conditional responses.

With --watch the file is reloaded on change and connected clients receive
list_changed notifications. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: runMockProvider,
	}
	cmd.Flags().StringVar(&mockConfigFile, "config", "", "Mock provider definition file (required)")
	cmd.Flags().BoolVar(&mockWatch, "watch", false, "Reload the definition file when it changes")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runMockProvider(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	srv, err := mock.NewServerFromFile(mockConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load mock provider: %w", err)
	}

	if mockWatch {
		watcher, err := mock.NewWatcher(srv, mock.DefaultDebounceInterval)
		if err != nil {
			return err
		}
		watcher.OnReload = func(err error) {
			if err != nil {
				return
			}
			tools, resources, prompts := srv.Counts()
			logging.Info("MockProvider", "Reloaded %d tools, %d resources, %d prompts", tools, resources, prompts)
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	return srv.Serve(commandContext(cmd))
}
