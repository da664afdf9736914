package execution

import (
	"context"
	"time"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/plan"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/google/uuid"
)

// SnapshotSource provides the capability snapshot a run validates against.
// *capability.Registry implements it.
type SnapshotSource interface {
	Snapshot() *capability.Set
}

// Engine runs whole plans through an Executor.
type Engine struct {
	executor  *Executor
	snapshots SnapshotSource
	callback  EventCallback
}

// NewEngine creates an Engine. A nil callback disables progress events.
func NewEngine(executor *Executor, snapshots SnapshotSource, callback EventCallback) *Engine {
	if callback == nil {
		callback = NoOpEventCallback{}
	}
	return &Engine{
		executor:  executor,
		snapshots: snapshots,
		callback:  callback,
	}
}

// WithCallback returns a copy of the engine that reports progress to callback.
func (e *Engine) WithCallback(callback EventCallback) *Engine {
	clone := *e
	if callback == nil {
		callback = NoOpEventCallback{}
	}
	clone.callback = callback
	return &clone
}

// Run executes the steps of p strictly in order and returns the aggregated result.
//
// A failing step never skips or alters the steps after it. Cancellation of ctx is
// checked before each step; a cancelled run returns the outcomes gathered so far
// with Cancelled set and a nil error. The only error Run returns is a connection
// failure of the provider session, and the partial result is returned with it.
// The result is never nil.
func (e *Engine) Run(ctx context.Context, p *plan.Plan) (*PlanResult, error) {
	result := &PlanResult{
		ID:        uuid.New().String(),
		Outcomes:  []StepOutcome{},
		StartedAt: time.Now(),
	}

	if p == nil {
		p = &plan.Plan{}
	}

	// One snapshot per run; re-discovery during the run does not affect it.
	set := e.snapshots.Snapshot()

	e.callback.OnRunStart(result.ID, p)
	logging.Debug("Engine", "Run %s started with %d steps and %d fallbacks", result.ID, len(p.Steps), len(p.FallbackSteps))

	var runErr error
	for i, step := range p.Steps {
		if ctx.Err() != nil {
			result.Cancelled = true
			logging.Info("Engine", "Run %s cancelled after %d of %d steps", result.ID, i, len(p.Steps))
			break
		}

		e.callback.OnStepStart(result.ID, i, step)
		outcome, err := e.executor.Execute(ctx, step, p.FallbackSteps, set)
		result.append(outcome)
		e.callback.OnStepComplete(result.ID, i, outcome)

		if err != nil {
			result.Aborted = err.Error()
			runErr = err
			logging.Error("Engine", err, "Run %s aborted at step %d", result.ID, i)
			break
		}
	}

	result.EndedAt = time.Now()
	e.callback.OnRunComplete(result)
	logging.Info("Engine", "Run %s finished: %d succeeded, %d failed in %s",
		result.ID, result.SuccessCount, result.FailureCount, result.Duration().Round(time.Millisecond))

	return result, runErr
}
