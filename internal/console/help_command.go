package console

import (
	"context"
	"strings"
)

// HelpCommand shows available commands and usage information
type HelpCommand struct {
	*baseCommand
	registry *Registry
}

// Execute shows help information
func (h *HelpCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		h.showGeneralHelp()
		return nil
	}

	commandName := strings.ToLower(args[0])
	command, exists := h.registry.Get(commandName)
	if !exists {
		h.output.Error("Unknown command: %s", commandName)
		h.output.OutputLine("Use 'help' to see all available commands.")
		return nil
	}

	h.output.OutputLine("Command: %s", commandName)
	h.output.OutputLine("Description: %s", command.Description())
	h.output.OutputLine("Usage: %s", command.Usage())
	if aliases := command.Aliases(); len(aliases) > 0 {
		h.output.OutputLine("Aliases: %s", strings.Join(aliases, ", "))
	}
	return nil
}

func (h *HelpCommand) showGeneralHelp() {
	h.output.OutputLine("Available commands:")
	for _, name := range h.registry.List() {
		cmd, _ := h.registry.Get(name)
		h.output.OutputLine("  %-28s - %s", cmd.Usage(), cmd.Description())
	}
	h.output.OutputLine("")
	h.output.OutputLine("Keyboard shortcuts:")
	h.output.OutputLine("  TAB                          - Auto-complete commands and arguments")
	h.output.OutputLine("  ↑/↓ (arrow keys)             - Navigate command history")
	h.output.OutputLine("  Ctrl+R                       - Search command history")
	h.output.OutputLine("  Ctrl+D                       - Exit")
	h.output.OutputLine("")
	h.output.OutputLine("Examples:")
	h.output.OutputLine("  search recent advances in battery chemistry")
	h.output.OutputLine("  load 3f2b9c1e-...")
}

func (h *HelpCommand) Usage() string {
	return "help [command]"
}

func (h *HelpCommand) Description() string {
	return "Show help information for commands"
}

func (h *HelpCommand) Completions(input string) []string {
	return h.registry.AllCompletions()
}

func (h *HelpCommand) Aliases() []string {
	return []string{"?"}
}

// ExitCommand ends the console
type ExitCommand struct {
	*baseCommand
}

func (e *ExitCommand) Execute(ctx context.Context, args []string) error {
	return ErrExit
}

func (e *ExitCommand) Usage() string {
	return "quit"
}

func (e *ExitCommand) Description() string {
	return "Exit the console"
}

func (e *ExitCommand) Aliases() []string {
	return []string{"exit", "q"}
}
