package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/plan"
	"github.com/giantswarm/sleuth/internal/session"
	"github.com/giantswarm/sleuth/internal/store"
	"github.com/giantswarm/sleuth/pkg/logging"

	"github.com/google/uuid"
)

// notificationRefreshTimeout bounds re-discovery triggered by a provider
// list_changed notification.
const notificationRefreshTimeout = 30 * time.Second

// ErrNoActiveSession is returned by operations that need a current session
// after Clear or before one was created or loaded.
var ErrNoActiveSession = errors.New("no active research session")

// Planner turns a goal into a plan over the capabilities in set.
type Planner interface {
	Plan(ctx context.Context, goal string, set *capability.Set) (*plan.Plan, error)
}

// Analyzer assesses the result of a plan run.
type Analyzer interface {
	Analyze(ctx context.Context, goal string, result *execution.PlanResult) (*session.Analysis, error)
}

// ChangeNotifier is implemented by provider sessions that announce changes to
// their capability lists.
type ChangeNotifier interface {
	OnCapabilitiesChanged(fn func(kind capability.Kind))
}

// Dependencies are the collaborators of a Service. Planner and Analyzer are
// optional: without them every query uses the degenerate plan and the raw
// analysis.
type Dependencies struct {
	Registry *capability.Registry
	Provider capability.Provider
	Engine   *execution.Engine
	Planner  Planner
	Analyzer Analyzer
	Store    store.RecordStore
}

// Service runs research queries and keeps the statistics of the current session.
type Service struct {
	registry *capability.Registry
	provider capability.Provider
	engine   *execution.Engine
	planner  Planner
	analyzer Analyzer
	store    store.RecordStore
	now      func() time.Time

	mu         sync.Mutex
	sessionID  string
	aggregator *session.Aggregator
}

// NewService creates a Service. When the provider announces capability list
// changes, the registry is refreshed in the background.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	s := &Service{
		registry: deps.Registry,
		provider: deps.Provider,
		engine:   deps.Engine,
		planner:  deps.Planner,
		analyzer: deps.Analyzer,
		store:    deps.Store,
		now:      time.Now,
	}

	if notifier, ok := deps.Provider.(ChangeNotifier); ok {
		notifier.OnCapabilitiesChanged(s.onCapabilitiesChanged)
	}
	return s, nil
}

// onCapabilitiesChanged runs on the transport's notification path, so the
// refresh happens on its own goroutine.
func (s *Service) onCapabilitiesChanged(kind capability.Kind) {
	logging.Info("Research", "Provider reported changed %s list, refreshing capabilities", kind)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationRefreshTimeout)
		defer cancel()
		if _, err := s.RefreshCapabilities(ctx); err != nil {
			logging.Warn("Research", "Capability refresh after %s change failed: %v", kind, err)
		}
	}()
}

// Capabilities returns the current capability snapshot.
func (s *Service) Capabilities() *capability.Set {
	return s.registry.Snapshot()
}

// RefreshCapabilities re-discovers the provider's capabilities. On failure the
// previous snapshot stays in place.
func (s *Service) RefreshCapabilities(ctx context.Context) (*capability.Set, error) {
	if s.provider == nil {
		return nil, api.NewConnectionError("", nil)
	}
	return s.registry.Refresh(ctx, s.provider)
}

// SessionID returns the ID of the current session, or "" after Clear.
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// NewSession starts a new session and stores it together with the current
// capability snapshot. It becomes the current session.
func (s *Service) NewSession(ctx context.Context) (session.Info, error) {
	id := uuid.New().String()
	now := s.now()
	aggregator := session.NewAggregator(id)

	info := session.Info{
		ID:           id,
		CreatedAt:    now,
		UpdatedAt:    now,
		Capabilities: s.registry.Snapshot().All(),
		Stats:        aggregator.Stats(),
	}
	if err := s.store.CreateSession(ctx, info); err != nil {
		return session.Info{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.mu.Lock()
	s.sessionID = id
	s.aggregator = aggregator
	s.mu.Unlock()

	logging.Info("Research", "Started session %s with %d capabilities", id, len(info.Capabilities))
	return info, nil
}

// current returns the active session, creating one if requested.
func (s *Service) current(ctx context.Context, create bool) (string, *session.Aggregator, error) {
	s.mu.Lock()
	id, aggregator := s.sessionID, s.aggregator
	s.mu.Unlock()

	if aggregator != nil {
		return id, aggregator, nil
	}
	if !create {
		return "", nil, ErrNoActiveSession
	}

	info, err := s.NewSession(ctx)
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID != info.ID {
		// Another caller switched sessions in the meantime.
		return s.sessionID, s.aggregator, nil
	}
	return info.ID, s.aggregator, nil
}

// Search plans, runs and analyzes one query and records it in the current
// session, starting a session if there is none.
//
// Planner and analyzer failures degrade to DegeneratePlan and RawAnalysis. The
// only errors returned after the run started are provider connection faults;
// the query is still recorded and the record is returned alongside the error.
func (s *Service) Search(ctx context.Context, query string) (*session.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	p := s.plan(ctx, query)
	return s.execute(ctx, query, p)
}

// Execute runs a prepared plan for goal and records it in the current session.
// The planner is not consulted.
func (s *Service) Execute(ctx context.Context, goal string, p *plan.Plan) (*session.Record, error) {
	if p == nil {
		return nil, fmt.Errorf("plan is required")
	}
	p.Normalize()
	return s.execute(ctx, goal, p)
}

func (s *Service) plan(ctx context.Context, query string) *plan.Plan {
	set := s.registry.Snapshot()

	if s.planner == nil {
		return DegeneratePlan(query, set, fmt.Errorf("no planner configured"))
	}

	p, err := s.planner.Plan(ctx, query, set)
	if err != nil {
		logging.Warn("Research", "Planning failed, using degenerate plan: %v", err)
		return DegeneratePlan(query, set, err)
	}
	if p == nil {
		return DegeneratePlan(query, set, fmt.Errorf("planner returned no plan"))
	}
	return p
}

func (s *Service) execute(ctx context.Context, query string, p *plan.Plan) (*session.Record, error) {
	sessionID, aggregator, err := s.current(ctx, true)
	if err != nil {
		return nil, err
	}

	for _, problem := range p.Validate(s.registry.Snapshot()) {
		logging.Warn("Research", "Plan for %q: %v", query, problem)
	}

	result, runErr := s.engine.Run(ctx, p)

	var analysis *session.Analysis
	switch {
	case runErr != nil:
		analysis = RawAnalysis(result, runErr)
	case s.analyzer == nil:
		analysis = RawAnalysis(result, fmt.Errorf("no analyzer configured"))
	default:
		analysis, err = s.analyzer.Analyze(ctx, query, result)
		if err != nil || analysis == nil {
			logging.Warn("Research", "Analysis failed, using raw analysis: %v", err)
			analysis = RawAnalysis(result, err)
		}
	}

	record := session.Record{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Query:     query,
		Plan:      p,
		Result:    result,
		Analysis:  analysis,
		CreatedAt: s.now(),
	}

	// The query is recorded even if ctx was cancelled during the run.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.store.Append(persistCtx, record); err != nil {
		return &record, fmt.Errorf("failed to store research record: %w", err)
	}

	stats := aggregator.RecordRun(query, result)
	if err := s.persistStats(persistCtx, sessionID, stats); err != nil {
		return &record, err
	}

	return &record, runErr
}

func (s *Service) persistStats(ctx context.Context, sessionID string, stats session.Stats) error {
	err := s.store.UpdateSession(ctx, session.Info{
		ID:        sessionID,
		UpdatedAt: s.now(),
		Stats:     stats,
	})
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", sessionID, err)
	}
	return nil
}

// Status reports the statistics of the current session together with the
// capability counts of the current snapshot.
func (s *Service) Status() (session.StatusReport, error) {
	_, aggregator, err := s.current(context.Background(), false)
	if err != nil {
		return session.StatusReport{}, err
	}
	return session.NewStatusReport(aggregator.Stats(), s.registry.Snapshot().Counts()), nil
}

// Summary condenses every stored record of the current session.
func (s *Service) Summary(ctx context.Context) (session.Summary, error) {
	sessionID, _, err := s.current(ctx, false)
	if err != nil {
		return session.Summary{}, err
	}
	return s.SummaryOf(ctx, sessionID)
}

// SummaryOf condenses every stored record of the session id.
func (s *Service) SummaryOf(ctx context.Context, id string) (session.Summary, error) {
	info, err := s.store.Session(ctx, id)
	if err != nil {
		return session.Summary{}, err
	}
	records, err := s.store.Records(ctx, id)
	if err != nil {
		return session.Summary{}, fmt.Errorf("failed to load records of session %s: %w", id, err)
	}
	return session.Summarize(info, records), nil
}

// Analyze returns the most recent queries of the current session with their findings.
func (s *Service) Analyze(ctx context.Context) ([]session.RecentQuery, error) {
	sessionID, _, err := s.current(ctx, false)
	if err != nil {
		return nil, err
	}
	records, err := s.store.Records(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records of session %s: %w", sessionID, err)
	}
	return session.RecentQueries(records), nil
}

// Save persists the statistics of the current session and stamps the save time.
func (s *Service) Save(ctx context.Context) (session.Stats, error) {
	sessionID, aggregator, err := s.current(ctx, false)
	if err != nil {
		return session.Stats{}, err
	}
	stats := aggregator.MarkSaved()
	if err := s.persistStats(ctx, sessionID, stats); err != nil {
		return session.Stats{}, err
	}
	logging.Info("Research", "Saved session %s", sessionID)
	return stats, nil
}

// Load makes the stored session id the current session and restores its statistics.
func (s *Service) Load(ctx context.Context, id string) (session.Info, error) {
	exists, err := s.store.SessionExists(ctx, id)
	if err != nil {
		return session.Info{}, err
	}
	if !exists {
		return session.Info{}, api.NewNotFoundError("session", id)
	}

	info, err := s.store.Session(ctx, id)
	if err != nil {
		return session.Info{}, err
	}
	if info.Stats.SessionID == "" {
		info.Stats.SessionID = id
	}
	aggregator := session.Restore(info.Stats)
	aggregator.SetState(session.StateActive)

	s.mu.Lock()
	s.sessionID = id
	s.aggregator = aggregator
	s.mu.Unlock()

	logging.Info("Research", "Loaded session %s (%d queries)", id, info.Stats.QueryCount)
	return info, nil
}

// Clear detaches from the current session. Stored data is kept.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID != "" {
		logging.Info("Research", "Cleared session %s", s.sessionID)
	}
	s.sessionID = ""
	s.aggregator = nil
}

// Sessions lists the stored sessions, most recently updated first.
func (s *Service) Sessions(ctx context.Context) ([]session.Info, error) {
	return s.store.ListSessions(ctx)
}

// Session returns a stored session header.
func (s *Service) Session(ctx context.Context, id string) (session.Info, error) {
	return s.store.Session(ctx, id)
}

// Records returns the stored records of session id in the order they were run.
func (s *Service) Records(ctx context.Context, id string) ([]session.Record, error) {
	return s.store.Records(ctx, id)
}
