// Package execution runs plans against a provider session.
//
// Executor handles one step: it validates the step against the capability
// snapshot, dispatches it by kind with a per-step timeout and, on failure, runs
// the first fallback of the same kind that targets a different capability.
//
// Engine runs all steps of a plan in declared order. A failing step never stops
// the steps after it; only cancellation (checked between steps) or a broken
// provider connection ends a run early, and both still yield a PlanResult with
// the outcomes gathered so far.
package execution
