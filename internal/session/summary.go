package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/giantswarm/sleuth/internal/capability"
)

const (
	topFindingsLimit     = 10
	recommendationsLimit = 10
	recentQueriesLimit   = 5
)

// StatusReport is the point-in-time view of the active session.
type StatusReport struct {
	SessionID         string                  `json:"sessionId"`
	QueryCount        int                     `json:"queryCount"`
	SuccessfulQueries int                     `json:"successfulQueries"`
	FailedQueries     int                     `json:"failedQueries"`
	SuccessRate       float64                 `json:"successRate"`
	LastQuery         string                  `json:"lastQuery,omitempty"`
	LastQueryTime     time.Time               `json:"lastQueryTime,omitempty"`
	LastSaved         time.Time               `json:"lastSaved,omitempty"`
	Capabilities      map[capability.Kind]int `json:"capabilities"`
	State             State                   `json:"state"`
}

// NewStatusReport combines session statistics with the capability counts of
// the current snapshot.
func NewStatusReport(stats Stats, counts map[capability.Kind]int) StatusReport {
	return StatusReport{
		SessionID:         stats.SessionID,
		QueryCount:        stats.QueryCount,
		SuccessfulQueries: stats.SuccessfulQueries,
		FailedQueries:     stats.FailedQueries,
		SuccessRate:       stats.RoundedSuccessRate(),
		LastQuery:         stats.LastQuery,
		LastQueryTime:     stats.LastQueryTime,
		LastSaved:         stats.LastSaved,
		Capabilities:      counts,
		State:             stats.State,
	}
}

// Summary condenses every record of a session.
type Summary struct {
	SessionID         string   `json:"sessionId"`
	QueryCount        int      `json:"queryCount"`
	SuccessfulQueries int      `json:"successfulQueries"`
	FailedQueries     int      `json:"failedQueries"`
	SuccessRate       float64  `json:"successRate"`
	CapabilitiesUsed  []string `json:"capabilitiesUsed"`
	TopFindings       []string `json:"topFindings"`
	Recommendations   []string `json:"recommendations"`
	DurationHours     float64  `json:"durationHours"`
}

// Summarize builds a Summary from a session header and its records, which are
// expected in creation order.
func Summarize(info Info, records []Record) Summary {
	summary := Summary{
		SessionID:        info.ID,
		QueryCount:       len(records),
		CapabilitiesUsed: []string{},
		TopFindings:      []string{},
		Recommendations:  []string{},
	}

	used := map[string]struct{}{}
	seenRecommendations := map[string]struct{}{}

	for _, r := range records {
		if r.Succeeded() {
			summary.SuccessfulQueries++
		}

		if r.Result != nil {
			for _, o := range r.Result.Outcomes {
				used[o.Step.String()] = struct{}{}
				if o.FallbackStep != nil && o.Status.Succeeded() {
					used[o.FallbackStep.String()] = struct{}{}
				}
			}
		}

		if r.Analysis == nil {
			continue
		}
		for _, f := range r.Analysis.Findings {
			if len(summary.TopFindings) < topFindingsLimit {
				summary.TopFindings = append(summary.TopFindings, f)
			}
		}
		for _, rec := range r.Analysis.Recommendations {
			if _, dup := seenRecommendations[rec]; dup || len(summary.Recommendations) >= recommendationsLimit {
				continue
			}
			seenRecommendations[rec] = struct{}{}
			summary.Recommendations = append(summary.Recommendations, rec)
		}
	}

	summary.FailedQueries = summary.QueryCount - summary.SuccessfulQueries
	if summary.QueryCount > 0 {
		summary.SuccessRate = round2(float64(summary.SuccessfulQueries) / float64(summary.QueryCount) * 100)
	}

	for key := range used {
		summary.CapabilitiesUsed = append(summary.CapabilitiesUsed, key)
	}
	sort.Strings(summary.CapabilitiesUsed)

	end := info.UpdatedAt
	if len(records) > 0 && records[len(records)-1].CreatedAt.After(end) {
		end = records[len(records)-1].CreatedAt
	}
	if !info.CreatedAt.IsZero() && end.After(info.CreatedAt) {
		summary.DurationHours = end.Sub(info.CreatedAt).Hours()
	}

	return summary
}

// RecentQuery is a query with the findings it produced.
type RecentQuery struct {
	Query     string    `json:"query"`
	Succeeded bool      `json:"succeeded"`
	Findings  []string  `json:"findings"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecentQueries returns the most recent queries (newest first) with their findings.
func RecentQueries(records []Record) []RecentQuery {
	out := []RecentQuery{}
	for i := len(records) - 1; i >= 0 && len(out) < recentQueriesLimit; i-- {
		r := records[i]
		q := RecentQuery{
			Query:     r.Query,
			Succeeded: r.Succeeded(),
			Findings:  []string{},
			CreatedAt: r.CreatedAt,
		}
		if r.Analysis != nil {
			q.Findings = append(q.Findings, r.Analysis.Findings...)
		}
		out = append(out, q)
	}
	return out
}

// FormatRate renders a success/total pair the way analyses report it.
func FormatRate(success, total int) string {
	return fmt.Sprintf("%d/%d", success, total)
}
