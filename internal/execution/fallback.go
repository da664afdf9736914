package execution

import "github.com/giantswarm/sleuth/internal/plan"

// SelectFallback returns the first fallback with the same kind as failed and a
// different capability name. A fallback never targets the capability that just
// failed, so a broken capability cannot be retried through its own fallback.
func SelectFallback(failed plan.Step, fallbacks []plan.Step) (plan.Step, bool) {
	for _, candidate := range fallbacks {
		if candidate.Kind != failed.Kind {
			continue
		}
		if candidate.Capability == failed.Capability {
			continue
		}
		return candidate, true
	}
	return plan.Step{}, false
}
