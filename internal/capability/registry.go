package capability

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/singleflight"
)

// Provider is the discovery half of a provider session.
type Provider interface {
	// Connected reports whether the session finished its handshake and is usable.
	Connected() bool
	// Name identifies the provider in logs and errors.
	Name() string
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	ListResources(ctx context.Context) ([]mcp.Resource, error)
	ListPrompts(ctx context.Context) ([]mcp.Prompt, error)
}

// Discover queries provider for all of its capabilities.
//
// Tools are mandatory: a failure to list them fails discovery. Resources and
// prompts are optional and a failure to list either is logged and skipped.
func Discover(ctx context.Context, provider Provider) (*Set, error) {
	if provider == nil {
		return nil, api.NewConnectionError("", nil)
	}
	if !provider.Connected() {
		return nil, api.NewConnectionError(provider.Name(), nil)
	}

	tools, err := provider.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools from %s: %w", provider.Name(), err)
	}

	caps := make([]Capability, 0, len(tools))
	for _, tool := range tools {
		caps = append(caps, FromTool(tool))
	}

	resources, err := provider.ListResources(ctx)
	if err != nil {
		warnOptionalListFailure(provider, KindResource, err)
	}
	for _, resource := range resources {
		caps = append(caps, FromResource(resource))
	}

	prompts, err := provider.ListPrompts(ctx)
	if err != nil {
		warnOptionalListFailure(provider, KindPrompt, err)
	}
	for _, prompt := range prompts {
		caps = append(caps, FromPrompt(prompt))
	}

	set, err := NewSet(caps...)
	if err != nil {
		return nil, err
	}

	counts := set.Counts()
	logging.Info("Registry", "Discovered %d tools, %d resources, %d prompts from %s",
		counts[KindTool], counts[KindResource], counts[KindPrompt], provider.Name())

	return set, nil
}

// warnOptionalListFailure logs a skipped resource or prompt listing. A lost
// connection is reported as such rather than as a missing capability kind.
func warnOptionalListFailure(provider Provider, kind Kind, err error) {
	if api.IsConnectionError(err) {
		logging.Warn("Registry", "Lost connection to %s while listing %s: %v", provider.Name(), kind.Plural(), err)
		return
	}
	logging.Warn("Registry", "Provider %s does not list %s: %v", provider.Name(), kind.Plural(), err)
}

// Registry holds the current capability snapshot.
type Registry struct {
	current atomic.Pointer[Set]
	group   singleflight.Group
}

// NewRegistry creates a Registry holding an empty snapshot.
func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(EmptySet())
	return r
}

// Snapshot returns the current Set. It never blocks and never returns nil.
func (r *Registry) Snapshot() *Set {
	return r.current.Load()
}

// Replace installs set as the current snapshot.
func (r *Registry) Replace(set *Set) {
	if set == nil {
		set = EmptySet()
	}
	r.current.Store(set)
}

// Refresh discovers the provider's capabilities and swaps them in. The previous
// snapshot stays in place if discovery fails. Concurrent calls share one discovery.
func (r *Registry) Refresh(ctx context.Context, provider Provider) (*Set, error) {
	v, err, shared := r.group.Do("refresh", func() (interface{}, error) {
		set, err := Discover(ctx, provider)
		if err != nil {
			return nil, err
		}
		r.current.Store(set)
		return set, nil
	})
	if shared {
		logging.Debug("Registry", "Joined in-flight capability refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Set), nil
}
