package execution

import "github.com/giantswarm/sleuth/internal/plan"

// EventCallback receives progress notifications while a plan runs.
// Callbacks are invoked synchronously on the run's goroutine.
type EventCallback interface {
	OnRunStart(runID string, p *plan.Plan)
	OnStepStart(runID string, index int, step plan.Step)
	OnStepComplete(runID string, index int, outcome StepOutcome)
	OnRunComplete(result *PlanResult)
}

// NoOpEventCallback provides a no-operation implementation of EventCallback.
type NoOpEventCallback struct{}

func (NoOpEventCallback) OnRunStart(string, *plan.Plan) {}
func (NoOpEventCallback) OnStepStart(string, int, plan.Step) {}
func (NoOpEventCallback) OnStepComplete(string, int, StepOutcome) {}
func (NoOpEventCallback) OnRunComplete(*PlanResult) {}
