package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/config"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/plan"
	"github.com/giantswarm/sleuth/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testInfo(id string, updated time.Time) session.Info {
	return session.Info{
		ID:        id,
		CreatedAt: baseTime,
		UpdatedAt: updated,
		Capabilities: []capability.Capability{
			{
				Kind:        capability.KindTool,
				Name:        "web_search",
				Description: "Search the web",
				Schema:      map[string]any{"type": "object"},
			},
			{Kind: capability.KindPrompt, Name: "summarize"},
		},
		Stats: session.Stats{
			SessionID: id,
			StartedAt: baseTime,
			State:     session.StateActive,
		},
	}
}

func testRecord(id, sessionID, query string, failures int) session.Record {
	return session.Record{
		ID:        id,
		SessionID: sessionID,
		Query:     query,
		Plan: &plan.Plan{
			Steps: []plan.Step{{Kind: capability.KindTool, Capability: "web_search", Parameters: map[string]any{"query": query}}},
		},
		Result: &execution.PlanResult{
			ID: "run-" + id,
			Outcomes: []execution.StepOutcome{{
				Step:   plan.Step{Kind: capability.KindTool, Capability: "web_search"},
				Status: execution.StatusCompleted,
				Data:   "result for " + query,
			}},
			SuccessCount: 1,
			FailureCount: failures,
		},
		Analysis:  &session.Analysis{Findings: []string{"finding for " + query}, QualityScore: 0.5},
		CreatedAt: baseTime.Add(time.Minute),
	}
}

type storeFactory func(t *testing.T) RecordStore

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"sqlite": func(t *testing.T) RecordStore {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "sleuth.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"file": func(t *testing.T) RecordStore {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestRecordStore_SessionLifecycle(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			exists, err := s.SessionExists(ctx, "s1")
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, s.CreateSession(ctx, testInfo("s1", baseTime)))

			exists, err = s.SessionExists(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, exists)

			info, err := s.Session(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "s1", info.ID)
			assert.True(t, info.CreatedAt.Equal(baseTime))
			require.Len(t, info.Capabilities, 2)
			assert.Equal(t, "web_search", info.Capabilities[0].Name)
			assert.Equal(t, capability.KindPrompt, info.Capabilities[1].Kind)
			assert.Equal(t, "object", info.Capabilities[0].Schema["type"])

			updated := testInfo("s1", baseTime.Add(time.Hour))
			updated.Stats.QueryCount = 3
			updated.Stats.SuccessfulQueries = 2
			updated.Stats.FailedQueries = 1
			updated.Capabilities = nil
			require.NoError(t, s.UpdateSession(ctx, updated))

			info, err = s.Session(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, 3, info.Stats.QueryCount)
			assert.Equal(t, 2, info.Stats.SuccessfulQueries)
			assert.True(t, info.UpdatedAt.Equal(baseTime.Add(time.Hour)))
			assert.Len(t, info.Capabilities, 2, "capability snapshot is kept")
		})
	}
}

func TestRecordStore_NotFound(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			_, err := s.Session(ctx, "missing")
			assert.True(t, api.IsNotFound(err))

			err = s.UpdateSession(ctx, testInfo("missing", baseTime))
			assert.True(t, api.IsNotFound(err))

			err = s.Append(ctx, testRecord("r1", "missing", "q", 0))
			assert.True(t, api.IsNotFound(err))

			records, err := s.Records(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestRecordStore_AppendAndRecords(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			require.NoError(t, s.CreateSession(ctx, testInfo("s1", baseTime)))
			require.NoError(t, s.CreateSession(ctx, testInfo("s2", baseTime)))

			// IDs are deliberately not in lexical order.
			require.NoError(t, s.Append(ctx, testRecord("zzz", "s1", "first", 0)))
			require.NoError(t, s.Append(ctx, testRecord("aaa", "s1", "second", 1)))
			require.NoError(t, s.Append(ctx, testRecord("mmm", "s2", "other", 0)))

			records, err := s.Records(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, records, 2)

			assert.Equal(t, "first", records[0].Query)
			assert.Equal(t, "second", records[1].Query)
			assert.True(t, records[0].Succeeded())
			assert.False(t, records[1].Succeeded())

			rec := records[0]
			assert.Equal(t, "s1", rec.SessionID)
			require.NotNil(t, rec.Plan)
			require.Len(t, rec.Plan.Steps, 1)
			assert.Equal(t, "first", rec.Plan.Steps[0].Parameters["query"])
			require.NotNil(t, rec.Result)
			assert.Equal(t, execution.StatusCompleted, rec.Result.Outcomes[0].Status)
			assert.Equal(t, "result for first", rec.Result.Outcomes[0].Data)
			require.NotNil(t, rec.Analysis)
			assert.Equal(t, []string{"finding for first"}, rec.Analysis.Findings)
			assert.True(t, rec.CreatedAt.Equal(baseTime.Add(time.Minute)))
		})
	}
}

func TestRecordStore_ListSessions(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			sessions, err := s.ListSessions(ctx)
			require.NoError(t, err)
			assert.Empty(t, sessions)

			require.NoError(t, s.CreateSession(ctx, testInfo("old", baseTime)))
			require.NoError(t, s.CreateSession(ctx, testInfo("new", baseTime.Add(2*time.Hour))))
			require.NoError(t, s.CreateSession(ctx, testInfo("mid", baseTime.Add(time.Hour))))

			sessions, err = s.ListSessions(ctx)
			require.NoError(t, err)
			require.Len(t, sessions, 3)
			assert.Equal(t, "new", sessions[0].ID)
			assert.Equal(t, "mid", sessions[1].ID)
			assert.Equal(t, "old", sessions[2].ID)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleuth.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateSession(ctx, testInfo("s1", baseTime)))
	require.NoError(t, s.Append(ctx, testRecord("r1", "s1", "q", 0)))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Records(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSQLiteStore_CorruptCapabilitySchema(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sleuth.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateSession(ctx, testInfo("s1", baseTime)))
	_, err = s.db.ExecContext(ctx, `UPDATE capabilities SET schema = '{broken' WHERE name = 'web_search'`)
	require.NoError(t, err)

	_, err = s.Session(ctx, "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode schema of tool web_search")
}

func TestFileStore_DuplicateSession(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testInfo("s1", baseTime)))
	assert.Error(t, s.CreateSession(ctx, testInfo("s1", baseTime)))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StoreConfig{Driver: config.StoreDriverSQLite, Path: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(config.StoreConfig{Driver: config.StoreDriverFile, Path: filepath.Join(dir, "files")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(config.StoreConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"simple":         "simple",
		"a/b:c":          "a_b_c",
		"  spaced name ": "spaced_name",
		"...":            "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
