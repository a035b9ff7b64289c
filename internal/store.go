package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// schemaVersion is the current on-disk schema of the session database.
// Opening the store applies one upgrade transaction per version step.
const schemaVersion = 1

// DefaultMaxSessions is the retention cap enforced after growth operations.
const DefaultMaxSessions = 50

// Store is the durable session store: SQLite-backed, keyed by session id,
// with a secondary ordering on updatedAt. A single Store handle is meant to
// be shared process-wide; the underlying database is opened lazily exactly
// once, and the first failed open is cached so every later operation
// degrades to a safe no-op.
//
// No operation returns an error to the caller. Failures are logged and
// surfaced as nil/false/zero, matching how the UI layer treats storage: an
// absent result means "proceed with blank, unsaved state".
type Store struct {
	path     string
	maxBytes int64

	mu     sync.Mutex
	db     *sql.DB
	opened bool
	broken bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxBytes caps the total payload bytes the store may hold. Writes that
// would exceed the cap fail with the quota path (evict oldest, retry once).
// Zero means no budget beyond what the filesystem enforces.
func WithMaxBytes(n int64) StoreOption {
	return func(s *Store) { s.maxBytes = n }
}

// NewStore creates a store backed by the SQLite database at path. The
// database is not touched until the first operation.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenDefaultStore creates a store at the per-OS default location.
func OpenDefaultStore(opts ...StoreOption) (*Store, error) {
	paths, err := DefaultDataPaths()
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	return NewStore(paths.DBPath, opts...), nil
}

// ensure opens the database and applies schema upgrades, once. Subsequent
// calls return the cached outcome.
func (s *Store) ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked()
}

func (s *Store) ensureLocked() error {
	if s.opened {
		return nil
	}
	if s.broken {
		return ErrUnavailable
	}

	db, err := s.open()
	if err != nil {
		s.broken = true
		LogWarn("Session store unavailable: %v", err)
		return ErrUnavailable
	}
	s.db = db
	s.opened = true
	return nil
}

func (s *Store) open() (*sql.DB, error) {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the upgrade transaction and later writers
	// from contending on the SQLite file lock.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := upgradeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// upgradeSchema brings the database to schemaVersion, one transaction per
// version step, so a partially-upgraded database is never left behind.
func upgradeSchema(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for v := current + 1; v <= schemaVersion; v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin upgrade to v%d: %w", v, err)
		}
		if err := applyUpgrade(tx, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("upgrade to v%d failed: %w", v, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record schema version %d: %w", v, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit upgrade to v%d: %w", v, err)
		}
	}
	return nil
}

func applyUpgrade(tx *sql.Tx, version int) error {
	switch version {
	case 1:
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS sessions (
				id            TEXT PRIMARY KEY,
				title         TEXT NOT NULL,
				created_at    INTEGER NOT NULL,
				updated_at    INTEGER NOT NULL,
				message_count INTEGER NOT NULL,
				has_diagram   INTEGER NOT NULL,
				thumbnail     TEXT NOT NULL DEFAULT '',
				payload       TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
		`)
		return err
	default:
		return fmt.Errorf("no upgrade step for version %d", version)
	}
}

// Available reports whether the storage medium can be used. All other
// operations no-op when it cannot.
func (s *Store) Available() bool {
	return s.ensure() == nil
}

// Close releases the database handle. The store cannot be reused afterward.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.opened = false
	s.broken = true
	return err
}

// Get loads a session by id. Returns nil when the id is unknown, the record
// cannot be decoded, or the store is unavailable.
func (s *Store) Get(id string) *ChatSession {
	if s.ensure() != nil {
		return nil
	}

	var payload string
	err := s.db.QueryRow("SELECT payload FROM sessions WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		LogError("Failed to get session %s: %v", id, err)
		return nil
	}

	var session ChatSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		// Undecodable record; treat as absent rather than failing the load.
		LogWarn("Session %s has a corrupt payload: %v", id, err)
		return nil
	}
	return &session
}

// Put stores a session, overwriting any record with the same id. On a
// quota failure it evicts the single oldest session and retries exactly
// once; a second failure is reported as false without further eviction.
func (s *Store) Put(session *ChatSession) bool {
	if session == nil || session.ID == "" {
		return false
	}
	if s.ensure() != nil {
		return false
	}

	payload, err := json.Marshal(session)
	if err != nil {
		LogError("Failed to encode session %s: %v", session.ID, err)
		return false
	}

	err = s.putRow(session, payload)
	if err == nil {
		return true
	}
	if !isQuotaError(err) {
		LogError("Failed to save session %s: %v", session.ID, err)
		return false
	}

	LogWarn("Storage quota exceeded, deleting oldest session...")
	if err := s.DeleteOldest(); err != nil {
		LogError("Failed to evict oldest session: %v", err)
	}
	if err := s.putRow(session, payload); err != nil {
		LogError("Failed to save session %s after cleanup: %v", session.ID, err)
		return false
	}
	return true
}

func (s *Store) putRow(session *ChatSession, payload []byte) error {
	if s.maxBytes > 0 {
		var existing int64
		err := s.db.QueryRow(
			"SELECT COALESCE(SUM(LENGTH(payload)), 0) FROM sessions WHERE id != ?",
			session.ID,
		).Scan(&existing)
		if err != nil {
			return err
		}
		if existing+int64(len(payload)) > s.maxBytes {
			return ErrQuotaExceeded
		}
	}

	meta := session.Metadata()
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, title, created_at, updated_at, message_count, has_diagram, thumbnail, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			message_count = excluded.message_count,
			has_diagram = excluded.has_diagram,
			thumbnail = excluded.thumbnail,
			payload = excluded.payload
	`, meta.ID, meta.Title, meta.CreatedAt, meta.UpdatedAt, meta.MessageCount,
		boolToInt(meta.HasDiagram), meta.Thumbnail, string(payload))
	return err
}

// isQuotaError reports whether err is the configured byte budget being hit
// or SQLite refusing the write for lack of space.
func isQuotaError(err error) bool {
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "database or disk is full")
}

// Delete removes a session. No-op if the id is unknown.
func (s *Store) Delete(id string) {
	if s.ensure() != nil {
		return
	}
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		LogError("Failed to delete session %s: %v", id, err)
	}
}

// Count returns the number of stored sessions.
func (s *Store) Count() int {
	if s.ensure() != nil {
		return 0
	}
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		LogError("Failed to count sessions: %v", err)
		return 0
	}
	return n
}

// ListMetadata returns the metadata of every stored session, newest first by
// updatedAt. Only the denormalized metadata columns are read; message bodies
// stay on disk.
func (s *Store) ListMetadata() []SessionMetadata {
	if s.ensure() != nil {
		return []SessionMetadata{}
	}

	rows, err := s.db.Query(`
		SELECT id, title, created_at, updated_at, message_count, has_diagram, thumbnail
		FROM sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		LogError("Failed to list sessions: %v", err)
		return []SessionMetadata{}
	}
	defer rows.Close()

	metadata := []SessionMetadata{}
	for rows.Next() {
		var m SessionMetadata
		var hasDiagram int
		if err := rows.Scan(&m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt,
			&m.MessageCount, &hasDiagram, &m.Thumbnail); err != nil {
			LogError("Failed to scan session metadata: %v", err)
			continue
		}
		m.HasDiagram = hasDiagram != 0
		metadata = append(metadata, m)
	}
	if err := rows.Err(); err != nil {
		LogError("Session listing aborted: %v", err)
	}
	return metadata
}

// DeleteOldest removes the session with the smallest updatedAt.
func (s *Store) DeleteOldest() error {
	if err := s.ensure(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		DELETE FROM sessions WHERE id = (
			SELECT id FROM sessions ORDER BY updated_at ASC LIMIT 1
		)
	`)
	if err != nil {
		return &StoreError{Op: "delete", Err: err}
	}
	return nil
}

// EnforceLimit deletes oldest sessions one at a time until at most maxCount
// remain.
func (s *Store) EnforceLimit(maxCount int) {
	if maxCount <= 0 || s.ensure() != nil {
		return
	}
	for s.Count() > maxCount {
		if err := s.DeleteOldest(); err != nil {
			LogError("Failed to enforce session limit: %v", err)
			return
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
