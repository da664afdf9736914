package console

import (
	"context"
	"errors"
	"sort"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/session"
)

// ErrExit is returned by a command to end the console loop.
var ErrExit = errors.New("exit")

// Service is the research session API the console drives.
// *research.Service implements it.
type Service interface {
	Search(ctx context.Context, query string) (*session.Record, error)
	Status() (session.StatusReport, error)
	Summary(ctx context.Context) (session.Summary, error)
	Analyze(ctx context.Context) ([]session.RecentQuery, error)
	Save(ctx context.Context) (session.Stats, error)
	Load(ctx context.Context, id string) (session.Info, error)
	Clear()
	Sessions(ctx context.Context) ([]session.Info, error)
	Capabilities() *capability.Set
	RefreshCapabilities(ctx context.Context) (*capability.Set, error)
	SessionID() string
}

// Command represents a console command that can be executed interactively.
type Command interface {
	// Execute runs the command with the given arguments
	Execute(ctx context.Context, args []string) error

	// Usage returns the usage string for the command
	Usage() string

	// Description returns a brief description of what the command does
	Description() string

	// Completions returns possible completions for the argument being typed
	Completions(input string) []string

	// Aliases returns alternative names for this command
	Aliases() []string
}

// Registry manages available commands for the console.
type Registry struct {
	commands map[string]Command
	aliases  map[string]string // alias -> primary command name
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command to the registry.
func (r *Registry) Register(name string, cmd Command) {
	r.commands[name] = cmd

	for _, alias := range cmd.Aliases() {
		r.aliases[alias] = name
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) (Command, bool) {
	if cmd, exists := r.commands[name]; exists {
		return cmd, true
	}

	if primary, exists := r.aliases[name]; exists {
		if cmd, exists := r.commands[primary]; exists {
			return cmd, true
		}
	}

	return nil, false
}

// List returns all registered command names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllCompletions returns all command names and aliases, sorted.
func (r *Registry) AllCompletions() []string {
	completions := r.List()
	for alias := range r.aliases {
		completions = append(completions, alias)
	}
	sort.Strings(completions)
	return completions
}
