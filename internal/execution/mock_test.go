package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/giantswarm/sleuth/internal/capability"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

type invocation struct {
	kind capability.Kind
	name string
	args map[string]interface{}
}

// mockInvoker implements Invoker for testing. Capabilities listed in failures
// return that error; capabilities listed in blocking wait for their context;
// capabilities listed in delays take that long unless their context ends first.
type mockInvoker struct {
	mu        sync.Mutex
	calls     []invocation
	failures  map[string]error
	toolError map[string]string
	blocking  map[string]bool
	delays    map[string]time.Duration
}

func newMockInvoker() *mockInvoker {
	return &mockInvoker{
		failures:  map[string]error{},
		toolError: map[string]string{},
		blocking:  map[string]bool{},
		delays:    map[string]time.Duration{},
	}
}

func (m *mockInvoker) record(kind capability.Kind, name string, args map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, invocation{kind: kind, name: name, args: args})
}

func (m *mockInvoker) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		names = append(names, fmt.Sprintf("%s:%s", c.kind, c.name))
	}
	return names
}

func (m *mockInvoker) wait(ctx context.Context, name string) error {
	if m.blocking[name] {
		<-ctx.Done()
		return ctx.Err()
	}
	if d, ok := m.delays[name]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.failures[name]
}

func (m *mockInvoker) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	m.record(capability.KindTool, name, args)
	if err := m.wait(ctx, name); err != nil {
		return nil, err
	}
	if msg, ok := m.toolError[name]; ok {
		return mcp.NewToolResultError(msg), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s result for %v", name, args["q"])), nil
}

func (m *mockInvoker) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	m.record(capability.KindResource, uri, nil)
	if err := m.wait(ctx, uri); err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "text/plain", Text: "contents of " + uri},
		},
	}, nil
}

func (m *mockInvoker) GetPrompt(ctx context.Context, name string, args map[string]interface{}) (*mcp.GetPromptResult, error) {
	m.record(capability.KindPrompt, name, args)
	if err := m.wait(ctx, name); err != nil {
		return nil, err
	}
	return &mcp.GetPromptResult{
		Description: name,
		Messages: []mcp.PromptMessage{
			{Role: mcp.RoleUser, Content: mcp.NewTextContent(fmt.Sprintf("Research %v", args["topic"]))},
		},
	}, nil
}

var errProvider = errors.New("provider exploded")

// staticSnapshot implements SnapshotSource with a fixed set.
type staticSnapshot struct {
	set *capability.Set
}

func (s staticSnapshot) Snapshot() *capability.Set { return s.set }

func testCapabilities(t *testing.T) *capability.Set {
	t.Helper()
	set, err := capability.NewSet(
		capability.Capability{Kind: capability.KindTool, Name: "search"},
		capability.Capability{Kind: capability.KindTool, Name: "search-alt"},
		capability.Capability{Kind: capability.KindTool, Name: "extract"},
		capability.Capability{Kind: capability.KindResource, Name: "readme", Metadata: map[string]any{"uri": "docs://readme"}},
		capability.Capability{Kind: capability.KindResource, Name: "changelog", Metadata: map[string]any{"uri": "docs://changelog"}},
		capability.Capability{Kind: capability.KindPrompt, Name: "summarize"},
		capability.Capability{Kind: capability.KindPrompt, Name: "search"},
	)
	require.NoError(t, err)
	return set
}
