package cmd

import (
	"fmt"
	"strings"

	"github.com/giantswarm/sleuth/internal/app"
	"github.com/giantswarm/sleuth/internal/plan"

	"github.com/spf13/cobra"
)

var runGoal string

// newRunCmd creates the command that executes a hand-written plan file.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plan-file>",
		Short: "Execute a plan file without the planner",
		Long: `Loads a plan from a YAML or JSON file and runs it against the provider.
Kind names are normalized ("Tools", "tool" and "tools" are all accepted).
Steps naming unknown capabilities fail individually; the plan still runs.

Plan file format:

  steps:
    - kind: tool
      capability: web_search
      parameters:
        query: golang generics
  fallbackSteps:
    - kind: resource
      capability: guide
      parameters:
        uri: docs://guide
  expectedOutcomes:
    - Search results`,
		Args: cobra.ExactArgs(1),
		RunE: runPlanFile,
	}
	cmd.Flags().StringVar(&runGoal, "goal", "", "Goal recorded with the run (defaults to the plan file name)")
	return cmd
}

func runPlanFile(cmd *cobra.Command, args []string) error {
	p, err := plan.LoadFile(args[0])
	if err != nil {
		return err
	}

	goal := strings.TrimSpace(runGoal)
	if goal == "" {
		goal = fmt.Sprintf("plan %s", args[0])
	}

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

	for _, problem := range p.Validate(application.Research().Capabilities()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", problem)
	}

	progress.Start("Running plan...")
	record, err := application.Research().Execute(commandContext(cmd), goal, p)
	progress.Stop()

	return printRecord(cmd, formatter, record, err)
}
