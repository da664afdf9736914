package research

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/plan"
	"github.com/giantswarm/sleuth/internal/provider"
	"github.com/giantswarm/sleuth/internal/provider/mock"
	"github.com/giantswarm/sleuth/internal/session"
	"github.com/giantswarm/sleuth/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const providerConfig = `
name: research
tools:
  - name: web_search
    description: "Search the web"
    input_schema:
      type: object
      properties:
        query:
          type: string
      required: [query]
    responses:
      - condition:
          query: "outage"
        error: "backend unavailable"
      - response: "results for {{ .query }}"
resources:
  - uri: "docs://guide"
    name: guide
    text: "Research guide"
`

type fakePlanner struct {
	plan *plan.Plan
	err  error
}

func (f *fakePlanner) Plan(ctx context.Context, goal string, set *capability.Set) (*plan.Plan, error) {
	if f.err != nil {
		return nil, api.NewPlannerError(goal, f.err)
	}
	return f.plan, nil
}

type fakeAnalyzer struct {
	err   error
	goals []string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, goal string, result *execution.PlanResult) (*session.Analysis, error) {
	f.goals = append(f.goals, goal)
	if f.err != nil {
		return nil, api.NewAnalyzerError(f.err)
	}
	return &session.Analysis{
		Findings:        []string{"finding about " + goal},
		QualityScore:    0.8,
		Recommendations: []string{"dig deeper"},
		SuccessRate:     session.FormatRate(result.SuccessCount, len(result.Outcomes)),
	}, nil
}

type fixture struct {
	service  *Service
	mock     *mock.Server
	store    store.RecordStore
	planner  *fakePlanner
	analyzer *fakeAnalyzer
	registry *capability.Registry
	provider *provider.InProcessSession
}

func searchPlan(query string) *plan.Plan {
	return &plan.Plan{
		Steps: []plan.Step{{
			Kind:       capability.KindTool,
			Capability: "web_search",
			Parameters: map[string]any{"query": query},
		}},
	}
}

func newFixture(t *testing.T, recordStore store.RecordStore) *fixture {
	t.Helper()

	cfg, err := mock.ParseConfig([]byte(providerConfig))
	require.NoError(t, err)
	srv, err := mock.NewServer(cfg)
	require.NoError(t, err)

	sess := provider.NewInProcessSession(srv.Name(), srv.MCPServer())
	require.NoError(t, sess.Initialize(context.Background()))
	t.Cleanup(func() { _ = sess.Close() })

	registry := capability.NewRegistry()
	_, err = registry.Refresh(context.Background(), sess)
	require.NoError(t, err)

	if recordStore == nil {
		recordStore, err = store.NewFileStore(t.TempDir())
		require.NoError(t, err)
	}

	f := &fixture{
		mock:     srv,
		store:    recordStore,
		planner:  &fakePlanner{plan: searchPlan("golang")},
		analyzer: &fakeAnalyzer{},
		registry: registry,
		provider: sess,
	}

	f.service, err = NewService(Dependencies{
		Registry: registry,
		Provider: sess,
		Engine:   execution.NewEngine(execution.NewExecutor(sess, 5*time.Second), registry, nil),
		Planner:  f.planner,
		Analyzer: f.analyzer,
		Store:    recordStore,
	})
	require.NoError(t, err)
	return f
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(Dependencies{})
	assert.Error(t, err)
}

func TestService_Search(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	record, err := f.service.Search(ctx, "  golang  ")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "golang", record.Query)
	assert.Equal(t, f.service.SessionID(), record.SessionID)
	require.Len(t, record.Result.Outcomes, 1)
	assert.Equal(t, execution.StatusCompleted, record.Result.Outcomes[0].Status)
	assert.Equal(t, "results for golang", record.Result.Outcomes[0].Data)
	assert.Equal(t, []string{"finding about golang"}, record.Analysis.Findings)
	assert.Equal(t, "1/1", record.Analysis.SuccessRate)
	assert.Equal(t, []string{"golang"}, f.analyzer.goals)

	records, err := f.store.Records(ctx, record.SessionID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)

	status, err := f.service.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, status.QueryCount)
	assert.Equal(t, 1, status.SuccessfulQueries)
	assert.Equal(t, 100.0, status.SuccessRate)
	assert.Equal(t, "golang", status.LastQuery)
	assert.Equal(t, session.StateActive, status.State)
	assert.Equal(t, 1, status.Capabilities[capability.KindTool])
	assert.Equal(t, 1, status.Capabilities[capability.KindResource])

	stored, err := f.store.Session(ctx, record.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stats.QueryCount)
	assert.Len(t, stored.Capabilities, 2)
}

func TestService_SearchRejectsEmptyQuery(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.service.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.Empty(t, f.service.SessionID())

	sessions, err := f.service.Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestService_SearchDegradesOnPlannerFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.planner.err = errors.New("model unavailable")

	record, err := f.service.Search(context.Background(), "fallback topic")
	require.NoError(t, err)

	assert.Equal(t, true, record.Plan.Metadata["fallback"])
	require.Len(t, record.Plan.Steps, 1)
	assert.Equal(t, "web_search", record.Plan.Steps[0].Capability)
	assert.Equal(t, "fallback topic", record.Plan.Steps[0].Parameters["query"])
	assert.Equal(t, 1, record.Result.SuccessCount)
}

func TestService_SearchDegradesOnAnalyzerFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.analyzer.err = errors.New("rate limited")

	record, err := f.service.Search(context.Background(), "golang")
	require.NoError(t, err)

	assert.True(t, record.Analysis.Degraded)
	assert.Equal(t, "1/1", record.Analysis.SuccessRate)
	assert.Equal(t, []string{"Analysis failed due to error"}, record.Analysis.Findings)
}

func TestService_FailedStepCountsAsFailedQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.planner.plan = &plan.Plan{
		Steps: []plan.Step{
			{Kind: capability.KindTool, Capability: "web_search", Parameters: map[string]any{"query": "golang"}},
			{Kind: capability.KindTool, Capability: "web_search", Parameters: map[string]any{"query": "outage"}},
			{Kind: capability.KindTool, Capability: "missing_tool"},
		},
	}

	record, err := f.service.Search(context.Background(), "mixed")
	require.NoError(t, err)

	assert.Equal(t, 1, record.Result.SuccessCount)
	assert.Equal(t, 2, record.Result.FailureCount)
	assert.Contains(t, record.Result.Outcomes[1].Error, "backend unavailable")
	assert.Contains(t, record.Result.Outcomes[2].Error, "missing_tool")

	status, err := f.service.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, status.QueryCount)
	assert.Equal(t, 0, status.SuccessfulQueries)
	assert.Equal(t, 1, status.FailedQueries)
	assert.Equal(t, 0.0, status.SuccessRate)
}

func TestService_Execute(t *testing.T) {
	f := newFixture(t, nil)

	p := &plan.Plan{Steps: []plan.Step{
		{Kind: capability.Kind("Resources"), Capability: "guide", Parameters: map[string]any{"uri": "docs://guide"}},
	}}
	record, err := f.service.Execute(context.Background(), "guide.yaml", p)
	require.NoError(t, err)

	require.Len(t, record.Result.Outcomes, 1)
	assert.Equal(t, execution.StatusCompleted, record.Result.Outcomes[0].Status)
	assert.Equal(t, "Research guide", record.Result.Outcomes[0].Data)

	_, err = f.service.Execute(context.Background(), "nil", nil)
	assert.Error(t, err)
}

func TestService_EmptyPlanIsSuccessfulQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.planner.plan = &plan.Plan{}

	record, err := f.service.Search(context.Background(), "nothing to do")
	require.NoError(t, err)
	assert.Empty(t, record.Result.Outcomes)

	status, err := f.service.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, status.SuccessfulQueries)
}

func TestService_NoActiveSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Status()
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = f.service.Summary(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = f.service.Analyze(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = f.service.Save(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestService_SaveLoadClear(t *testing.T) {
	recordStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "sleuth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = recordStore.Close() })

	f := newFixture(t, recordStore)
	ctx := context.Background()

	first, err := f.service.Search(ctx, "golang")
	require.NoError(t, err)
	sessionID := first.SessionID

	stats, err := f.service.Save(ctx)
	require.NoError(t, err)
	assert.False(t, stats.LastSaved.IsZero())

	f.service.Clear()
	assert.Empty(t, f.service.SessionID())
	_, err = f.service.Status()
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// A search after Clear starts a new session.
	second, err := f.service.Search(ctx, "rust")
	require.NoError(t, err)
	assert.NotEqual(t, sessionID, second.SessionID)

	// Loading restores the statistics of the first session.
	other := newFixture(t, recordStore)
	info, err := other.service.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, info.ID)
	assert.Equal(t, sessionID, other.service.SessionID())

	status, err := other.service.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, status.QueryCount)
	assert.Equal(t, "golang", status.LastQuery)
	assert.False(t, status.LastSaved.IsZero())

	_, err = other.service.Search(ctx, "golang generics")
	require.NoError(t, err)
	status, err = other.service.Status()
	require.NoError(t, err)
	assert.Equal(t, 2, status.QueryCount)

	_, err = other.service.Load(ctx, "does-not-exist")
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, sessionID, other.service.SessionID())

	sessions, err := other.service.Sessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestService_SummaryAndAnalyze(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, q := range []string{"alpha", "beta", "gamma"} {
		f.planner.plan = searchPlan(q)
		_, err := f.service.Search(ctx, q)
		require.NoError(t, err)
	}

	summary, err := f.service.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.QueryCount)
	assert.Equal(t, 3, summary.SuccessfulQueries)
	assert.Equal(t, 100.0, summary.SuccessRate)
	assert.Equal(t, []string{"tool:web_search"}, summary.CapabilitiesUsed)
	assert.Equal(t, []string{"finding about alpha", "finding about beta", "finding about gamma"}, summary.TopFindings)
	assert.Equal(t, []string{"dig deeper"}, summary.Recommendations)

	recent, err := f.service.Analyze(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "gamma", recent[0].Query)
	assert.Equal(t, []string{"finding about gamma"}, recent[0].Findings)
}

func TestService_RefreshOnCapabilityChange(t *testing.T) {
	f := newFixture(t, nil)

	cfg, err := mock.ParseConfig([]byte(providerConfig + `
prompts:
  - name: summarize
    messages:
      - text: "Summarize"
`))
	require.NoError(t, err)
	require.NoError(t, f.mock.Apply(cfg))

	f.service.onCapabilitiesChanged(capability.KindPrompt)

	assert.Eventually(t, func() bool {
		_, ok := f.service.Capabilities().Lookup(capability.KindPrompt, "summarize")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
}

func TestService_RefreshCapabilitiesWithoutProvider(t *testing.T) {
	registry := capability.NewRegistry()
	recordStore, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s, err := NewService(Dependencies{
		Registry: registry,
		Engine:   execution.NewEngine(execution.NewExecutor(nil, 0), registry, nil),
		Store:    recordStore,
	})
	require.NoError(t, err)

	_, err = s.RefreshCapabilities(context.Background())
	assert.True(t, api.IsConnectionError(err))

	// Without planner, analyzer or capabilities a search still records an empty run.
	record, err := s.Search(context.Background(), "offline")
	require.NoError(t, err)
	assert.True(t, record.Plan.IsEmpty())
	assert.True(t, record.Analysis.Degraded)
}
