package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/plan"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultStepTimeout bounds a single provider call when no timeout is configured.
const DefaultStepTimeout = 30 * time.Second

// Invoker is the invocation half of a provider session.
type Invoker interface {
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
	ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error)
	GetPrompt(ctx context.Context, name string, args map[string]interface{}) (*mcp.GetPromptResult, error)
}

// Executor runs single plan steps against a provider.
type Executor struct {
	invoker Invoker
	timeout time.Duration
}

// NewExecutor creates an Executor. A non-positive timeout selects DefaultStepTimeout.
func NewExecutor(invoker Invoker, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	return &Executor{
		invoker: invoker,
		timeout: timeout,
	}
}

// Execute runs step and, if it fails, the first eligible entry of fallbacks.
//
// Step-local failures are recorded in the returned outcome. The error return is
// reserved for infrastructure faults (an unusable provider session); the outcome
// is valid in that case too. Cancelling ctx does not interrupt the step or its
// fallback.
func (e *Executor) Execute(ctx context.Context, step plan.Step, fallbacks []plan.Step, set *capability.Set) (StepOutcome, error) {
	outcome := StepOutcome{
		Step:      step,
		StartedAt: time.Now(),
	}

	data, err := e.dispatch(ctx, step, set)
	if err == nil {
		outcome.Status = StatusCompleted
		outcome.Data = data
		outcome.EndedAt = time.Now()
		return outcome, nil
	}

	outcome.Status = StatusFailed
	outcome.Error = err.Error()
	logging.Debug("Executor", "Step %s failed: %v", step, err)

	if api.IsConnectionError(err) {
		outcome.EndedAt = time.Now()
		return outcome, err
	}
	if api.IsUnknownCapabilityKind(err) {
		outcome.EndedAt = time.Now()
		return outcome, nil
	}

	fallback, ok := SelectFallback(step, fallbacks)
	if !ok {
		outcome.EndedAt = time.Now()
		return outcome, nil
	}

	logging.Debug("Executor", "Trying fallback %s for %s", fallback, step)
	outcome.FallbackStep = &fallback

	fallbackData, fallbackErr := e.dispatch(ctx, fallback, set)
	outcome.EndedAt = time.Now()
	if fallbackErr != nil {
		outcome.FallbackError = fallbackErr.Error()
		if api.IsConnectionError(fallbackErr) {
			return outcome, fallbackErr
		}
		return outcome, nil
	}

	outcome.Status = StatusCompletedWithFallback
	outcome.FallbackData = fallbackData
	return outcome, nil
}

// dispatch validates step against set and invokes the matching provider operation.
func (e *Executor) dispatch(ctx context.Context, step plan.Step, set *capability.Set) (any, error) {
	switch step.Kind {
	case capability.KindTool, capability.KindResource, capability.KindPrompt:
	default:
		return nil, api.NewUnknownCapabilityKindError(string(step.Kind))
	}

	if _, ok := set.Lookup(step.Kind, step.Capability); !ok {
		return nil, api.NewCapabilityNotFoundError(string(step.Kind), step.Capability)
	}

	// A step in flight is never interrupted by run cancellation; only the
	// per-step timeout bounds it. The engine checks for cancellation between steps.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	var (
		data any
		err  error
	)
	switch step.Kind {
	case capability.KindTool:
		data, err = e.callTool(callCtx, step)
	case capability.KindResource:
		uri, ok := step.Param("uri")
		if !ok {
			return nil, api.NewMissingParameterError(step.Capability, "uri")
		}
		data, err = e.readResource(callCtx, uri)
	case capability.KindPrompt:
		data, err = e.getPrompt(callCtx, step)
	}

	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, api.NewTimeoutError(fmt.Sprintf("%s %s", step.Kind, step.Capability), e.timeout)
	}
	return data, err
}

func (e *Executor) callTool(ctx context.Context, step plan.Step) (any, error) {
	result, err := e.invoker.CallTool(ctx, step.Capability, step.Parameters)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("tool %s returned no result", step.Capability)
	}
	text := contentText(result.Content)
	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return nil, fmt.Errorf("tool %s: %s", step.Capability, text)
	}
	return text, nil
}

func (e *Executor) readResource(ctx context.Context, uri string) (any, error) {
	result, err := e.invoker.ReadResource(ctx, uri)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("resource %s returned no contents", uri)
	}
	return resourceText(result.Contents), nil
}

func (e *Executor) getPrompt(ctx context.Context, step plan.Step) (any, error) {
	result, err := e.invoker.GetPrompt(ctx, step.Capability, step.Parameters)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("prompt %s returned no result", step.Capability)
	}
	return promptMessages(result), nil
}
