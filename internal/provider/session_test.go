package provider

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.MCPServer {
	srv := server.NewMCPServer("test-provider", "0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(true),
	)

	srv.AddTool(
		mcp.NewTool("search", mcp.WithDescription("Search documents"), mcp.WithString("query", mcp.Required())),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query, _ := request.GetArguments()["query"].(string)
			return mcp.NewToolResultText("results for " + query), nil
		},
	)
	srv.AddTool(
		mcp.NewTool("broken", mcp.WithDescription("Always fails")),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("backend unavailable"), nil
		},
	)
	srv.AddResource(
		mcp.NewResource("docs://readme", "readme", mcp.WithResourceDescription("Project readme"), mcp.WithMIMEType("text/plain")),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: request.Params.URI, MIMEType: "text/plain", Text: "hello"},
			}, nil
		},
	)
	srv.AddPrompt(
		mcp.NewPrompt("summarize", mcp.WithPromptDescription("Summarize a topic"), mcp.WithArgument("topic", mcp.RequiredArgument())),
		func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return &mcp.GetPromptResult{
				Description: "summary",
				Messages: []mcp.PromptMessage{
					{Role: mcp.RoleUser, Content: mcp.NewTextContent("Summarize " + request.Params.Arguments["topic"])},
				},
			}, nil
		},
	)
	return srv
}

func connectedSession(t *testing.T) *InProcessSession {
	t.Helper()
	s := NewInProcessSession("test", newTestServer())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Initialize(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInProcessSession_ListAndInvoke(t *testing.T) {
	s := connectedSession(t)
	ctx := context.Background()

	assert.True(t, s.Connected())
	assert.Equal(t, "in-process:test", s.Name())

	tools, err := s.ListTools(ctx)
	require.NoError(t, err)
	assert.Len(t, tools, 2)

	resources, err := s.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "docs://readme", resources[0].URI)

	prompts, err := s.ListPrompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)

	result, err := s.CallTool(ctx, "search", map[string]interface{}{"query": "go"})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Equal(t, "results for go", text.Text)

	failed, err := s.CallTool(ctx, "broken", nil)
	require.NoError(t, err)
	assert.True(t, failed.IsError)

	res, err := s.ReadResource(ctx, "docs://readme")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	prompt, err := s.GetPrompt(ctx, "summarize", map[string]interface{}{"topic": 42})
	require.NoError(t, err)
	require.Len(t, prompt.Messages, 1)
	promptText, ok := mcp.AsTextContent(prompt.Messages[0].Content)
	require.True(t, ok)
	assert.Equal(t, "Summarize 42", promptText.Text)

	assert.NoError(t, s.Ping(ctx))
}

func TestInProcessSession_OverlappingRequests(t *testing.T) {
	s := connectedSession(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 1 {
				_, errs[i] = s.ListTools(ctx)
				return
			}
			result, err := s.CallTool(ctx, "search", map[string]interface{}{"query": fmt.Sprintf("q%d", i)})
			if err != nil {
				errs[i] = err
				return
			}
			text, _ := mcp.AsTextContent(result.Content[0])
			results[i] = text.Text
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		if i%2 == 0 {
			assert.Equal(t, fmt.Sprintf("results for q%d", i), results[i])
		}
	}
}

func TestInProcessSession_DiscoverThroughRegistry(t *testing.T) {
	s := connectedSession(t)

	set, err := capability.Discover(context.Background(), s)
	require.NoError(t, err)

	counts := set.Counts()
	assert.Equal(t, 2, counts[capability.KindTool])
	assert.Equal(t, 1, counts[capability.KindResource])
	assert.Equal(t, 1, counts[capability.KindPrompt])

	_, ok := set.Lookup(capability.KindTool, "search")
	assert.True(t, ok)
}

func TestSession_NotConnected(t *testing.T) {
	s := NewInProcessSession("idle", newTestServer())
	ctx := context.Background()

	assert.False(t, s.Connected())

	_, err := s.ListTools(ctx)
	require.Error(t, err)
	assert.True(t, api.IsConnectionError(err))
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = s.CallTool(ctx, "search", nil)
	assert.True(t, api.IsConnectionError(err))

	_, err = s.ReadResource(ctx, "docs://readme")
	assert.True(t, api.IsConnectionError(err))

	_, err = s.GetPrompt(ctx, "summarize", nil)
	assert.True(t, api.IsConnectionError(err))

	assert.NoError(t, s.Close())
}

func TestSession_CloseDisconnects(t *testing.T) {
	s := NewInProcessSession("closing", newTestServer())
	require.NoError(t, s.Initialize(context.Background()))
	require.True(t, s.Connected())

	require.NoError(t, s.Close())
	assert.False(t, s.Connected())
	assert.NoError(t, s.Close())

	_, err := s.ListTools(context.Background())
	assert.True(t, api.IsConnectionError(err))
}

func TestSession_NotificationListeners(t *testing.T) {
	s := NewInProcessSession("notify", newTestServer())

	var got []capability.Kind
	s.OnCapabilitiesChanged(func(kind capability.Kind) { got = append(got, kind) })

	s.handleNotification(mcp.JSONRPCNotification{Notification: mcp.Notification{Method: "notifications/tools/list_changed"}})
	s.handleNotification(mcp.JSONRPCNotification{Notification: mcp.Notification{Method: "notifications/message"}})
	s.handleNotification(mcp.JSONRPCNotification{Notification: mcp.Notification{Method: "notifications/prompts/list_changed"}})
	s.handleNotification(mcp.JSONRPCNotification{Notification: mcp.Notification{Method: "notifications/resources/list_changed"}})

	assert.Equal(t, []capability.Kind{capability.KindTool, capability.KindPrompt, capability.KindResource}, got)
}

func TestNewSession(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantType    interface{}
		errContains string
	}{
		{
			name:     "stdio",
			config:   Config{Transport: "stdio", Command: "echo", Args: []string{"hello"}},
			wantType: &StdioSession{},
		},
		{
			name:     "stdio inferred from command",
			config:   Config{Command: "echo"},
			wantType: &StdioSession{},
		},
		{
			name:     "streamable-http",
			config:   Config{Transport: "streamable-http", URL: "http://example.com/mcp"},
			wantType: &StreamableHTTPSession{},
		},
		{
			name:     "sse",
			config:   Config{Transport: "SSE", URL: "http://example.com/sse", Headers: map[string]string{"X-Test": "1"}},
			wantType: &SSESession{},
		},
		{
			name:        "stdio missing command",
			config:      Config{Transport: "stdio"},
			errContains: "command is required",
		},
		{
			name:        "sse missing url",
			config:      Config{Transport: "sse"},
			errContains: "url is required",
		},
		{
			name:        "unknown transport",
			config:      Config{Transport: "carrier-pigeon", URL: "x"},
			errContains: "unsupported transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSession(tt.config)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, s)
			assert.False(t, s.Connected())
		})
	}
}

func TestStdioSession_Name(t *testing.T) {
	s := NewStdioSession("sleuth", []string{"mock-provider", "--config", "tools.yaml"}, nil)
	assert.Equal(t, "sleuth mock-provider --config tools.yaml", s.Name())
}
