/*
Package capability discovers and indexes the tools, resources and prompts that an
MCP provider exposes at connect time.

# Overview

Nothing about a provider's capabilities is known at compile time. Discover asks the
provider for its tool list (mandatory) and, independently, for its resource and prompt
lists. Providers legitimately support only a subset of kinds, so a failing resource or
prompt listing is logged and skipped rather than failing discovery:

	set, err := capability.Discover(ctx, session)
	if err != nil {
	    // tools could not be listed or the session is not connected
	}

	if c, ok := set.Lookup(capability.KindTool, "search"); ok {
	    fmt.Println(c.Schema)
	}

# Keys

Capabilities are keyed by (kind, name). Two tools with the same name are an error,
while a tool and a prompt may share a name.

# Snapshots

A Set is immutable. Registry holds the current Set behind an atomic pointer, so any
number of concurrent plan runs read the same snapshot without locking while Refresh
discovers a new Set and swaps it in. Refresh calls that overlap are collapsed into a
single discovery round trip.
*/
package capability
