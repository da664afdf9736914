package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/plan"

	"github.com/briandowns/spinner"
)

// Progress shows a spinner while a research query runs and follows the
// engine's step events. A disabled Progress only tracks the current step.
type Progress struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	enabled bool
	total   int
	current string
}

// Compile-time interface compliance check
var _ execution.EventCallback = (*Progress)(nil)

// NewProgress creates a Progress writing to w. When enabled is false nothing
// is drawn, which is what non-interactive output needs.
func NewProgress(w io.Writer, enabled bool) *Progress {
	return &Progress{
		spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w)),
		enabled: enabled,
	}
}

// Start shows the spinner with message.
func (p *Progress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = message
	if !p.enabled {
		return
	}
	p.spinner.Suffix = " " + message
	p.spinner.Start()
}

// Stop hides the spinner.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		p.spinner.Stop()
	}
}

// Current returns the message currently shown.
func (p *Progress) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Progress) update(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = message
	if p.enabled {
		p.spinner.Suffix = " " + message
	}
}

func (p *Progress) OnRunStart(runID string, pl *plan.Plan) {
	p.mu.Lock()
	p.total = len(pl.Steps)
	p.mu.Unlock()
	p.update(fmt.Sprintf("Running plan with %d steps...", len(pl.Steps)))
}

func (p *Progress) OnStepStart(runID string, index int, step plan.Step) {
	p.mu.Lock()
	total := p.total
	p.mu.Unlock()
	p.update(fmt.Sprintf("Step %d/%d: %s", index+1, total, step))
}

func (p *Progress) OnStepComplete(runID string, index int, outcome execution.StepOutcome) {}

func (p *Progress) OnRunComplete(result *execution.PlanResult) {
	p.update("Analyzing results...")
}
