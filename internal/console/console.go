package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/formatting"
	"github.com/giantswarm/sleuth/internal/research"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/chzyer/readline"
)

// commandExecutionTimeout is the timeout for a single console command. It
// leaves room for a full plan run with analysis.
const commandExecutionTimeout = 10 * time.Minute

const (
	promptChevronUnicode = "»"
	promptChevronASCII   = ">"
	shortSessionIDLength = 8
)

// Options configures a Console.
type Options struct {
	// HistoryFile persists command history between runs. Empty disables it.
	HistoryFile string
	// Output receives command output. Defaults to stdout.
	Output io.Writer
	// Color enables colored tables and messages.
	Color bool
	// Progress is shown while a search runs. It should also be registered as
	// the engine's event callback so it can follow the steps.
	Progress *Progress
}

// Console is an interactive research shell with tab completion and history.
type Console struct {
	service     Service
	output      *Output
	formatter   formatting.Formatter
	registry    *Registry
	progress    *Progress
	historyFile string
	useUnicode  bool

	mu sync.Mutex
	rl *readline.Instance
}

// New creates a Console for service and registers all commands.
func New(service Service, opts Options) *Console {
	out := NewOutput(opts.Output, opts.Color)
	progress := opts.Progress
	if progress == nil {
		progress = NewProgress(out.Writer(), false)
	}

	c := &Console{
		service:     service,
		output:      out,
		formatter:   formatting.New(formatting.Options{Format: formatting.FormatTable, Color: opts.Color}),
		registry:    NewRegistry(),
		progress:    progress,
		historyFile: opts.HistoryFile,
		useUnicode:  detectUnicodeSupport(),
	}
	c.registerCommands()
	return c
}

// Registry returns the command registry.
func (c *Console) Registry() *Registry {
	return c.registry
}

func (c *Console) registerCommands() {
	base := &baseCommand{service: c.service, output: c.output, formatter: c.formatter}

	c.registry.Register("help", &HelpCommand{baseCommand: base, registry: c.registry})
	c.registry.Register("quit", &ExitCommand{baseCommand: base})
	c.registry.Register("status", &StatusCommand{baseCommand: base})
	c.registry.Register("capabilities", &CapabilitiesCommand{baseCommand: base})
	c.registry.Register("search", &SearchCommand{baseCommand: base, progress: c.progress})
	c.registry.Register("analyze", &AnalyzeCommand{baseCommand: base})
	c.registry.Register("summary", &SummaryCommand{baseCommand: base})
	c.registry.Register("save", &SaveCommand{baseCommand: base})
	c.registry.Register("load", &LoadCommand{baseCommand: base})
	c.registry.Register("clear", &ClearCommand{baseCommand: base})
	c.registry.Register("sessions", &SessionsCommand{baseCommand: base})
	c.registry.Register("refresh", &RefreshCommand{baseCommand: base})
}

// Execute parses one input line and runs the matching command.
// It returns ErrExit when the user asked to leave.
func (c *Console) Execute(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	commandName := strings.ToLower(parts[0])
	command, exists := c.registry.Get(commandName)
	if !exists {
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}

	commandCtx, cancel := context.WithTimeout(ctx, commandExecutionTimeout)
	defer cancel()

	err := command.Execute(commandCtx, parts[1:])
	// search, load and clear change the current session
	c.updatePrompt()

	if errors.Is(err, research.ErrNoActiveSession) {
		return fmt.Errorf("no active session. Run 'search <query>' or 'load <session-id>' first")
	}
	return err
}

// Run reads commands until the user exits, input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	config := &readline.Config{
		Prompt:          c.buildPrompt(),
		HistoryFile:     c.historyFile,
		AutoComplete:    c.createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          c.output.Writer(),

		HistorySearchFold: true,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	c.mu.Lock()
	c.rl = rl
	c.mu.Unlock()

	counts := c.service.Capabilities().Counts()
	c.output.Info("Research console started with %d tools, %d resources, %d prompts. Type 'help' for available commands.",
		counts[capability.KindTool], counts[capability.KindResource], counts[capability.KindPrompt])
	fmt.Fprintln(c.output.Writer())

	for {
		select {
		case <-ctx.Done():
			c.output.Info("Console shutting down...")
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			c.output.Info("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := c.Execute(ctx, input); err != nil {
			if errors.Is(err, ErrExit) {
				c.output.Info("Goodbye!")
				return nil
			}
			logging.Debug("Console", "Command %q failed: %v", input, err)
			c.output.Error("Error: %v", err)
		}

		fmt.Fprintln(c.output.Writer())
	}
}

// createCompleter builds tab completion from the registered commands.
func (c *Console) createCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range c.registry.AllCompletions() {
		cmd, _ := c.registry.Get(name)
		items = append(items, readline.PcItem(name, readline.PcItemDynamic(completionsFor(cmd))))
	}
	return readline.NewPrefixCompleter(items...)
}

func completionsFor(cmd Command) readline.DynamicCompleteFunc {
	return func(line string) []string {
		fields := strings.Fields(line)
		partial := ""
		if len(fields) > 1 && !strings.HasSuffix(line, " ") {
			partial = fields[len(fields)-1]
		}
		return cmd.Completions(partial)
	}
}

// buildPrompt shows the first characters of the current session ID.
func (c *Console) buildPrompt() string {
	chevron := promptChevronASCII
	if c.useUnicode {
		chevron = promptChevronUnicode
	}

	parts := []string{"sleuth"}
	if id := c.service.SessionID(); id != "" {
		if len(id) > shortSessionIDLength {
			id = id[:shortSessionIDLength]
		}
		parts = append(parts, "["+id+"]")
	}
	parts = append(parts, chevron)
	return strings.Join(parts, " ") + " "
}

func (c *Console) updatePrompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rl != nil {
		c.rl.SetPrompt(c.buildPrompt())
	}
}

// detectUnicodeSupport checks if the terminal likely supports unicode characters.
func detectUnicodeSupport() bool {
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
