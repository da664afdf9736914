package cmd

import (
	"fmt"

	"github.com/giantswarm/sleuth/internal/capability"

	"github.com/spf13/cobra"
)

// newCapabilitiesCmd creates the command listing the provider's capabilities.
func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "capabilities [tools|resources|prompts]",
		Aliases:   []string{"caps"},
		Short:     "List the tools, resources and prompts of the provider",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"tools", "resources", "prompts"},
		RunE:      runCapabilities,
	}
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	var kind capability.Kind
	if len(args) == 1 {
		kind = capability.ParseKind(args[0])
		if !kind.Valid() {
			return fmt.Errorf("unknown capability kind: %s. Valid kinds: tools, resources, prompts", args[0])
		}
	}

	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	application, err := newApplication(cmd, false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	set := application.Research().Capabilities()
	if kind != "" {
		set, err = capability.NewSet(set.ByKind(kind)...)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCapabilities(set))
	return nil
}
