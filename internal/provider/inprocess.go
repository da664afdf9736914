package provider

import (
	"context"
	"fmt"

	"github.com/giantswarm/sleuth/internal/api"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/server"
)

// InProcessSession connects directly to an MCP server running in the same
// process. It is used by the mock provider and by tests.
type InProcessSession struct {
	baseSession
	server *server.MCPServer
}

// NewInProcessSession creates a session bound to srv.
func NewInProcessSession(name string, srv *server.MCPServer) *InProcessSession {
	return &InProcessSession{
		baseSession: baseSession{name: "in-process:" + name},
		server:      srv,
	}
}

// Initialize starts the in-process transport and performs the protocol handshake.
func (s *InProcessSession) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	mcpClient, err := client.NewInProcessClient(s.server)
	if err != nil {
		return api.NewConnectionError(s.name, fmt.Errorf("failed to create in-process client: %w", err))
	}
	if err := mcpClient.Start(ctx); err != nil {
		return api.NewConnectionError(s.name, fmt.Errorf("failed to start in-process transport: %w", err))
	}

	return s.handshake(ctx, mcpClient)
}
