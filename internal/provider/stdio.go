package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
)

// DefaultInitTimeout is the default timeout for starting a provider and
// completing the MCP handshake.
const DefaultInitTimeout = 10 * time.Second

// StdioSession talks to a provider subprocess over stdin/stdout.
type StdioSession struct {
	baseSession
	command string
	args    []string
	env     map[string]string
}

// NewStdioSession creates a session that will run command with args and env.
// The process is started by Initialize.
func NewStdioSession(command string, args []string, env map[string]string) *StdioSession {
	return &StdioSession{
		baseSession: baseSession{name: strings.TrimSpace(command + " " + strings.Join(args, " "))},
		command:     command,
		args:        args,
		env:         env,
	}
}

// Initialize starts the subprocess and performs the protocol handshake.
func (s *StdioSession) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	keys := make([]string, 0, len(s.env))
	for k := range s.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	envStrings := make([]string, 0, len(keys))
	for _, k := range keys {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, s.env[k]))
	}

	logging.Debug("StdioSession", "Starting provider %s with env keys %v", s.name, keys)

	mcpClient, err := client.NewStdioMCPClient(s.command, envStrings, s.args...)
	if err != nil {
		return api.NewConnectionError(s.name, fmt.Errorf("failed to start provider process: %w", err))
	}

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, DefaultInitTimeout)
		defer cancel()
	}

	return s.handshake(initCtx, mcpClient)
}
