package console

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
)

// completionTimeout bounds store lookups made while completing arguments.
const completionTimeout = 2 * time.Second

// SearchCommand runs a research query in the current session
type SearchCommand struct {
	*baseCommand
	progress *Progress
}

func (c *SearchCommand) Execute(ctx context.Context, args []string) error {
	if _, err := c.parseArgs(args, 1, c.Usage()); err != nil {
		return err
	}
	query := stripQuotes(c.joinArgsFrom(args, 0))

	c.progress.Start(fmt.Sprintf("Researching %q...", query))
	record, err := c.service.Search(ctx, query)
	c.progress.Stop()

	if record != nil {
		c.print(c.formatter.FormatRecord(record))
	}
	if err != nil {
		if api.IsConnectionError(err) {
			return fmt.Errorf("provider connection lost, try 'refresh': %w", err)
		}
		return err
	}
	return nil
}

func (c *SearchCommand) Usage() string {
	return "search <query>"
}

func (c *SearchCommand) Description() string {
	return "Plan, run and analyze a research query"
}

func (c *SearchCommand) Aliases() []string {
	return []string{"s", "research"}
}

// AnalyzeCommand shows the most recent queries of the session with their findings
type AnalyzeCommand struct {
	*baseCommand
}

func (c *AnalyzeCommand) Execute(ctx context.Context, args []string) error {
	recent, err := c.service.Analyze(ctx)
	if err != nil {
		return err
	}
	c.print(c.formatter.FormatRecentQueries(recent))
	return nil
}

func (c *AnalyzeCommand) Usage() string {
	return "analyze"
}

func (c *AnalyzeCommand) Description() string {
	return "Show recent queries and their findings"
}

// SummaryCommand summarizes the current session
type SummaryCommand struct {
	*baseCommand
}

func (c *SummaryCommand) Execute(ctx context.Context, args []string) error {
	summary, err := c.service.Summary(ctx)
	if err != nil {
		return err
	}
	c.print(c.formatter.FormatSummary(summary))
	return nil
}

func (c *SummaryCommand) Usage() string {
	return "summary"
}

func (c *SummaryCommand) Description() string {
	return "Summarize findings and metrics of the session"
}

// StatusCommand shows the statistics of the current session
type StatusCommand struct {
	*baseCommand
}

func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	status, err := c.service.Status()
	if err != nil {
		return err
	}
	c.print(c.formatter.FormatStatus(status))
	return nil
}

func (c *StatusCommand) Usage() string {
	return "status"
}

func (c *StatusCommand) Description() string {
	return "Show session statistics and capability counts"
}

// CapabilitiesCommand lists the discovered capabilities
type CapabilitiesCommand struct {
	*baseCommand
}

func (c *CapabilitiesCommand) Execute(ctx context.Context, args []string) error {
	set := c.service.Capabilities()
	if len(args) == 0 {
		c.print(c.formatter.FormatCapabilities(set))
		return nil
	}

	kind := capability.ParseKind(args[0])
	if !kind.Valid() {
		return fmt.Errorf("unknown capability kind: %s. Valid kinds: tools, resources, prompts", args[0])
	}
	filtered, err := capability.NewSet(set.ByKind(kind)...)
	if err != nil {
		return err
	}
	c.print(c.formatter.FormatCapabilities(filtered))
	return nil
}

func (c *CapabilitiesCommand) Usage() string {
	return "capabilities [tools|resources|prompts]"
}

func (c *CapabilitiesCommand) Description() string {
	return "List the capabilities of the provider"
}

func (c *CapabilitiesCommand) Completions(input string) []string {
	completions := make([]string, 0, len(capability.Kinds))
	for _, k := range capability.Kinds {
		completions = append(completions, k.Plural())
	}
	return completions
}

func (c *CapabilitiesCommand) Aliases() []string {
	return []string{"caps", "list"}
}

// RefreshCommand re-discovers the capabilities of the provider
type RefreshCommand struct {
	*baseCommand
}

func (c *RefreshCommand) Execute(ctx context.Context, args []string) error {
	set, err := c.service.RefreshCapabilities(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh capabilities: %w", err)
	}
	counts := set.Counts()
	c.output.Success("Discovered %d tools, %d resources, %d prompts",
		counts[capability.KindTool], counts[capability.KindResource], counts[capability.KindPrompt])
	return nil
}

func (c *RefreshCommand) Usage() string {
	return "refresh"
}

func (c *RefreshCommand) Description() string {
	return "Re-discover the capabilities of the provider"
}

// SaveCommand persists the statistics of the current session
type SaveCommand struct {
	*baseCommand
}

func (c *SaveCommand) Execute(ctx context.Context, args []string) error {
	if _, err := c.service.Save(ctx); err != nil {
		return err
	}
	c.output.Success("Session %s saved", c.service.SessionID())
	return nil
}

func (c *SaveCommand) Usage() string {
	return "save"
}

func (c *SaveCommand) Description() string {
	return "Save the current session"
}

// LoadCommand switches to a stored session
type LoadCommand struct {
	*baseCommand
}

func (c *LoadCommand) Execute(ctx context.Context, args []string) error {
	if _, err := c.parseArgs(args, 1, c.Usage()); err != nil {
		return err
	}
	id := stripQuotes(args[0])

	info, err := c.service.Load(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("session %s not found. Use 'sessions' to list stored sessions", id)
		}
		return err
	}
	c.output.Success("Loaded session %s (%d queries)", info.ID, info.Stats.QueryCount)
	return nil
}

func (c *LoadCommand) Usage() string {
	return "load <session-id>"
}

func (c *LoadCommand) Description() string {
	return "Load a stored session"
}

// Completions offers the IDs of stored sessions.
func (c *LoadCommand) Completions(input string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	sessions, err := c.service.Sessions(ctx)
	if err != nil {
		return []string{}
	}
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

// ClearCommand detaches from the current session
type ClearCommand struct {
	*baseCommand
}

func (c *ClearCommand) Execute(ctx context.Context, args []string) error {
	id := c.service.SessionID()
	c.service.Clear()
	if id == "" {
		c.output.Info("No active session")
	} else {
		c.output.Success("Cleared session %s. The next search starts a new session", id)
	}
	return nil
}

func (c *ClearCommand) Usage() string {
	return "clear"
}

func (c *ClearCommand) Description() string {
	return "Detach from the current session"
}

// SessionsCommand lists stored sessions
type SessionsCommand struct {
	*baseCommand
}

func (c *SessionsCommand) Execute(ctx context.Context, args []string) error {
	sessions, err := c.service.Sessions(ctx)
	if err != nil {
		return err
	}
	c.print(c.formatter.FormatSessions(sessions))
	return nil
}

func (c *SessionsCommand) Usage() string {
	return "sessions"
}

func (c *SessionsCommand) Description() string {
	return "List stored sessions"
}
