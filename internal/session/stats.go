package session

import (
	"math"
	"time"
)

// State is the lifecycle state of a session.
type State string

const (
	StateActive State = "active"
	StateClosed State = "closed"
)

// Stats are the running counters of one research session.
// Counters only ever increase; only State and the timestamps are rewritten.
type Stats struct {
	SessionID         string    `json:"sessionId"`
	QueryCount        int       `json:"queryCount"`
	SuccessfulQueries int       `json:"successfulQueries"`
	FailedQueries     int       `json:"failedQueries"`
	LastQuery         string    `json:"lastQuery,omitempty"`
	LastQueryTime     time.Time `json:"lastQueryTime,omitempty"`
	StartedAt         time.Time `json:"startedAt"`
	LastSaved         time.Time `json:"lastSaved,omitempty"`
	State             State     `json:"state"`
}

// SuccessRate returns the percentage of successful queries in [0,100].
// It is exactly 0 when no query has been recorded.
func (s Stats) SuccessRate() float64 {
	if s.QueryCount == 0 {
		return 0
	}
	return float64(s.SuccessfulQueries) / float64(s.QueryCount) * 100
}

// RoundedSuccessRate returns SuccessRate rounded to two decimals for display.
func (s Stats) RoundedSuccessRate() float64 {
	return round2(s.SuccessRate())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
