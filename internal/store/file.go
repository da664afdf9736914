package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/giantswarm/sleuth/internal/api"
	"github.com/giantswarm/sleuth/internal/session"
	"github.com/giantswarm/sleuth/pkg/logging"

	"sigs.k8s.io/yaml"
)

const (
	sessionFileName = "session.yaml"
	recordsDirName  = "research"
)

// FileStore implements RecordStore with one directory per session:
//
//	<root>/<session-id>/session.yaml
//	<root>/<session-id>/research/000001_<record-id>.yaml
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

func (fs *FileStore) sessionDir(id string) string {
	return filepath.Join(fs.root, sanitizeFilename(id))
}

func (fs *FileStore) writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	// Write to a temp file and rename so readers never see partial files.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// CreateSession writes the session header. Creating an existing session fails.
func (fs *FileStore) CreateSession(ctx context.Context, info session.Info) error {
	if info.ID == "" {
		return fmt.Errorf("session id cannot be empty")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := filepath.Join(fs.sessionDir(info.ID), sessionFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("session %s already exists", info.ID)
	}
	if err := fs.writeYAML(path, info); err != nil {
		return err
	}

	logging.Debug("Store", "Created session %s in %s", info.ID, path)
	return nil
}

// UpdateSession replaces the stats and update time, keeping the stored
// capability snapshot and creation time.
func (fs *FileStore) UpdateSession(ctx context.Context, info session.Info) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := filepath.Join(fs.sessionDir(info.ID), sessionFileName)
	var stored session.Info
	if err := readYAML(path, &stored); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return api.NewNotFoundError("session", info.ID)
		}
		return err
	}

	stored.UpdatedAt = info.UpdatedAt
	stored.Stats = info.Stats
	return fs.writeYAML(path, stored)
}

// Session reads a session header.
func (fs *FileStore) Session(ctx context.Context, id string) (session.Info, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var info session.Info
	if err := readYAML(filepath.Join(fs.sessionDir(id), sessionFileName), &info); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return session.Info{}, api.NewNotFoundError("session", id)
		}
		return session.Info{}, err
	}
	return info, nil
}

// SessionExists reports whether the session header file exists.
func (fs *FileStore) SessionExists(ctx context.Context, id string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, err := os.Stat(filepath.Join(fs.sessionDir(id), sessionFileName))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ListSessions reads every session header, newest update first. Unreadable
// sessions are skipped with a warning.
func (fs *FileStore) ListSessions(ctx context.Context) ([]session.Info, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []session.Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var info session.Info
		path := filepath.Join(fs.root, entry.Name(), sessionFileName)
		if err := readYAML(path, &info); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logging.Warn("Store", "Skipping unreadable session %s: %v", path, err)
			}
			continue
		}
		info.Capabilities = nil
		sessions = append(sessions, info)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}

// Append writes the record as the next numbered file of the session.
func (fs *FileStore) Append(ctx context.Context, record session.Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := fs.sessionDir(record.SessionID)
	if _, err := os.Stat(filepath.Join(dir, sessionFileName)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return api.NewNotFoundError("session", record.SessionID)
		}
		return err
	}

	files, err := recordFiles(filepath.Join(dir, recordsDirName))
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%06d_%s.yaml", len(files)+1, sanitizeFilename(record.ID))
	return fs.writeYAML(filepath.Join(dir, recordsDirName, name), record)
}

// Records reads the session's record files in append order.
func (fs *FileStore) Records(ctx context.Context, sessionID string) ([]session.Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	files, err := recordFiles(filepath.Join(fs.sessionDir(sessionID), recordsDirName))
	if err != nil {
		return nil, err
	}

	records := make([]session.Record, 0, len(files))
	for _, path := range files {
		var rec session.Record
		if err := readYAML(path, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordFiles lists the record files in dir sorted by sequence number.
func recordFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yaml files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Close is a no-op for the file store.
func (fs *FileStore) Close() error {
	return nil
}

// sanitizeFilename ensures the filename is safe for filesystem operations
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", ".", "_", " ", "_",
	)
	sanitized := replacer.Replace(name)

	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")

	if sanitized == "" {
		sanitized = "unnamed"
	}
	return sanitized
}
