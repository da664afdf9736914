package store

import (
	"context"
	"fmt"

	"github.com/giantswarm/sleuth/internal/config"
	"github.com/giantswarm/sleuth/internal/session"
)

// RecordStore persists research sessions and their query records.
// Records are append-only: once written they are never modified.
type RecordStore interface {
	// CreateSession stores a new session header and its capability snapshot.
	CreateSession(ctx context.Context, info session.Info) error
	// UpdateSession replaces the statistics and update time of an existing session.
	UpdateSession(ctx context.Context, info session.Info) error
	// Session returns a session header. A missing session is an *api.NotFoundError.
	Session(ctx context.Context, id string) (session.Info, error)
	// SessionExists reports whether a session was stored.
	SessionExists(ctx context.Context, id string) (bool, error)
	// ListSessions returns all sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]session.Info, error)

	// Append stores one query record for an existing session.
	Append(ctx context.Context, record session.Record) error
	// Records returns the records of a session in the order they were appended.
	Records(ctx context.Context, sessionID string) ([]session.Record, error)

	Close() error
}

// Compile-time interface compliance checks
var (
	_ RecordStore = (*SQLiteStore)(nil)
	_ RecordStore = (*FileStore)(nil)
)

// Open creates the store selected by cfg.
func Open(cfg config.StoreConfig) (RecordStore, error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite, "":
		return NewSQLiteStore(cfg.Path)
	case config.StoreDriverFile:
		return NewFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
