package capability

import (
	"fmt"
	"sort"
	"time"
)

// DuplicateCapabilityError is returned when a provider reports the same name twice
// for one kind. The same name across different kinds is allowed.
type DuplicateCapabilityError struct {
	Key Key
}

func (e *DuplicateCapabilityError) Error() string {
	return fmt.Sprintf("duplicate %s capability %q", e.Key.Kind, e.Key.Name)
}

// Set is an immutable snapshot of discovered capabilities.
type Set struct {
	index        map[Key]Capability
	ordered      []Capability
	discoveredAt time.Time
}

// NewSet builds a Set from caps. The order of All is kind (tool, resource,
// prompt) and then name, independent of the order caps were reported in.
func NewSet(caps ...Capability) (*Set, error) {
	s := &Set{
		index:        make(map[Key]Capability, len(caps)),
		ordered:      make([]Capability, 0, len(caps)),
		discoveredAt: time.Now(),
	}

	for _, c := range caps {
		key := c.Key()
		if _, exists := s.index[key]; exists {
			return nil, &DuplicateCapabilityError{Key: key}
		}
		s.index[key] = c
		s.ordered = append(s.ordered, c)
	}

	rank := map[Kind]int{KindTool: 0, KindResource: 1, KindPrompt: 2}
	sort.SliceStable(s.ordered, func(i, j int) bool {
		a, b := s.ordered[i], s.ordered[j]
		if a.Kind != b.Kind {
			return rank[a.Kind] < rank[b.Kind]
		}
		return a.Name < b.Name
	})

	return s, nil
}

// EmptySet returns a Set without capabilities.
func EmptySet() *Set {
	s, _ := NewSet()
	return s
}

// Lookup returns the capability with the given kind and name.
func (s *Set) Lookup(kind Kind, name string) (Capability, bool) {
	if s == nil {
		return Capability{}, false
	}
	c, ok := s.index[Key{Kind: kind, Name: name}]
	return c, ok
}

// All returns every capability in deterministic order.
func (s *Set) All() []Capability {
	if s == nil {
		return nil
	}
	out := make([]Capability, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// ByKind returns the capabilities of one kind, sorted by name.
func (s *Set) ByKind(kind Kind) []Capability {
	if s == nil {
		return nil
	}
	var out []Capability
	for _, c := range s.ordered {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Counts returns the number of capabilities per kind. Every kind is present.
func (s *Set) Counts() map[Kind]int {
	counts := map[Kind]int{KindTool: 0, KindResource: 0, KindPrompt: 0}
	if s == nil {
		return counts
	}
	for _, c := range s.ordered {
		counts[c.Kind]++
	}
	return counts
}

// Len returns the total number of capabilities.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ordered)
}

// First returns the first capability in deterministic order.
func (s *Set) First() (Capability, bool) {
	if s.Len() == 0 {
		return Capability{}, false
	}
	return s.ordered[0], true
}

// DiscoveredAt returns when the snapshot was built.
func (s *Set) DiscoveredAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.discoveredAt
}
