package session

import (
	"sync"
	"time"

	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/pkg/logging"
)

// Aggregator merges plan results into the statistics of one session.
// It is safe for concurrent use and only hands out copies of its state.
type Aggregator struct {
	mu    sync.Mutex
	stats Stats
	now   func() time.Time
}

// NewAggregator starts statistics for a fresh session.
func NewAggregator(sessionID string) *Aggregator {
	return Restore(Stats{
		SessionID: sessionID,
		StartedAt: time.Now(),
		State:     StateActive,
	})
}

// Restore resumes an aggregator from previously persisted statistics.
func Restore(stats Stats) *Aggregator {
	if stats.State == "" {
		stats.State = StateActive
	}
	return &Aggregator{stats: stats, now: time.Now}
}

// RecordRun counts one plan run as one query. The query is successful only if
// no step failed; a run with any failed step counts as a failed query even
// though its step-level successes stay visible in the PlanResult.
func (a *Aggregator) RecordRun(query string, result *execution.PlanResult) Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.QueryCount++
	if result != nil && result.FailureCount == 0 {
		a.stats.SuccessfulQueries++
	} else {
		a.stats.FailedQueries++
	}
	a.stats.LastQuery = query
	a.stats.LastQueryTime = a.now()

	logging.Debug("Session", "Session %s: %d queries, %.2f%% successful",
		a.stats.SessionID, a.stats.QueryCount, a.stats.SuccessRate())

	return a.stats
}

// MarkSaved records the time the session was last persisted.
func (a *Aggregator) MarkSaved() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.LastSaved = a.now()
	return a.stats
}

// SetState updates the lifecycle state.
func (a *Aggregator) SetState(state State) Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.State = state
	return a.stats
}

// Stats returns a copy of the current statistics.
func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// SuccessRate returns the current success rate, 0 when nothing was recorded.
func (a *Aggregator) SuccessRate() float64 {
	return a.Stats().SuccessRate()
}
