package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/session"
	"github.com/giantswarm/sleuth/pkg/logging"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements RecordStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	logging.Debug("Store", "Opened SQLite store at %s", dbPath)
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		stats       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS research (
		id          TEXT PRIMARY KEY,
		seq         INTEGER NOT NULL,
		session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		query       TEXT NOT NULL,
		plan        TEXT,
		results     TEXT,
		analysis    TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_research_session ON research(session_id, seq);

	CREATE TABLE IF NOT EXISTS capabilities (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id       TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		capability_type  TEXT NOT NULL,
		name             TEXT NOT NULL,
		description      TEXT,
		schema           TEXT,
		metadata         TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_capabilities_session ON capabilities(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CreateSession stores the session row and one capabilities row per capability.
func (s *SQLiteStore) CreateSession(ctx context.Context, info session.Info) error {
	stats, err := marshalJSON(info.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats for session %s: %w", info.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at, stats) VALUES (?, ?, ?, ?)`,
		info.ID, formatTime(info.CreatedAt), formatTime(info.UpdatedAt), stats,
	); err != nil {
		return fmt.Errorf("failed to create session %s: %w", info.ID, err)
	}

	for _, c := range info.Capabilities {
		schema, err := marshalJSON(c.Schema)
		if err != nil {
			return fmt.Errorf("failed to encode schema of %s: %w", c.Key(), err)
		}
		metadata, err := marshalJSON(c.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata of %s: %w", c.Key(), err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO capabilities (session_id, capability_type, name, description, schema, metadata)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			info.ID, string(c.Kind), c.Name, c.Description, schema, metadata,
		); err != nil {
			return fmt.Errorf("failed to store capability %s: %w", c.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.Debug("Store", "Created session %s with %d capabilities", info.ID, len(info.Capabilities))
	return nil
}

// UpdateSession replaces the stats and updated_at of a session.
func (s *SQLiteStore) UpdateSession(ctx context.Context, info session.Info) error {
	stats, err := marshalJSON(info.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats for session %s: %w", info.ID, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ?, stats = ? WHERE id = ?`,
		formatTime(info.UpdatedAt), stats, info.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", info.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return api.NewNotFoundError("session", info.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (session.Info, error) {
	var (
		info                 session.Info
		createdAt, updatedAt string
		stats                string
	)
	if err := row.Scan(&info.ID, &createdAt, &updatedAt, &stats); err != nil {
		return session.Info{}, err
	}

	var err error
	if info.CreatedAt, err = parseTime(createdAt); err != nil {
		return session.Info{}, fmt.Errorf("invalid created_at for session %s: %w", info.ID, err)
	}
	if info.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return session.Info{}, fmt.Errorf("invalid updated_at for session %s: %w", info.ID, err)
	}
	if err := json.Unmarshal([]byte(stats), &info.Stats); err != nil {
		return session.Info{}, fmt.Errorf("invalid stats for session %s: %w", info.ID, err)
	}
	return info, nil
}

// Session returns the session header including its capability snapshot.
func (s *SQLiteStore) Session(ctx context.Context, id string) (session.Info, error) {
	info, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, stats FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return session.Info{}, api.NewNotFoundError("session", id)
	}
	if err != nil {
		return session.Info{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT capability_type, name, description, schema, metadata
		 FROM capabilities WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return session.Info{}, fmt.Errorf("failed to load capabilities of session %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                    capability.Capability
			kind                 string
			description          sql.NullString
			schema, metadataJSON sql.NullString
		)
		if err := rows.Scan(&kind, &c.Name, &description, &schema, &metadataJSON); err != nil {
			return session.Info{}, err
		}
		c.Kind = capability.Kind(kind)
		c.Description = description.String
		if err := unmarshalNullable(schema, &c.Schema); err != nil {
			return session.Info{}, fmt.Errorf("failed to decode schema of %s %s in session %s: %w", kind, c.Name, id, err)
		}
		if err := unmarshalNullable(metadataJSON, &c.Metadata); err != nil {
			return session.Info{}, fmt.Errorf("failed to decode metadata of %s %s in session %s: %w", kind, c.Name, id, err)
		}
		info.Capabilities = append(info.Capabilities, c)
	}
	return info, rows.Err()
}

// SessionExists reports whether the session row exists.
func (s *SQLiteStore) SessionExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListSessions returns session headers without capabilities, newest update first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]session.Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, updated_at, stats FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []session.Info
	for rows.Next() {
		info, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// Append inserts a research row for an existing session.
func (s *SQLiteStore) Append(ctx context.Context, record session.Record) error {
	exists, err := s.SessionExists(ctx, record.SessionID)
	if err != nil {
		return err
	}
	if !exists {
		return api.NewNotFoundError("session", record.SessionID)
	}

	planJSON, err := marshalJSON(record.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	resultJSON, err := marshalJSON(record.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	analysisJSON, err := marshalJSON(record.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO research (id, seq, session_id, query, plan, results, analysis, created_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM research WHERE session_id = ?), ?, ?, ?, ?, ?, ?)`,
		record.ID, record.SessionID, record.SessionID, record.Query, planJSON, resultJSON, analysisJSON, formatTime(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append record %s: %w", record.ID, err)
	}
	return nil
}

// Records returns the research rows of a session in append order.
func (s *SQLiteStore) Records(ctx context.Context, sessionID string) ([]session.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, query, plan, results, analysis, created_at
		 FROM research WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []session.Record
	for rows.Next() {
		var (
			rec                                session.Record
			planJSON, resultJSON, analysisJSON sql.NullString
			createdAt                          string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Query, &planJSON, &resultJSON, &analysisJSON, &createdAt); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at for record %s: %w", rec.ID, err)
		}
		if err := unmarshalNullable(planJSON, &rec.Plan); err != nil {
			return nil, fmt.Errorf("invalid plan for record %s: %w", rec.ID, err)
		}
		if err := unmarshalNullable(resultJSON, &rec.Result); err != nil {
			return nil, fmt.Errorf("invalid result for record %s: %w", rec.ID, err)
		}
		if err := unmarshalNullable(analysisJSON, &rec.Analysis); err != nil {
			return nil, fmt.Errorf("invalid analysis for record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func unmarshalNullable(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
