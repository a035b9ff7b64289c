package internal

import "sync"

// SessionData is the transportable slice of a session the UI layer reads
// and writes: everything except identity and bookkeeping fields.
type SessionData struct {
	Messages     []StoredMessage
	XMLSnapshots []XMLSnapshot
	DiagramXML   string
	Thumbnail    string
	History      []DiagramVersion
}

// Manager orchestrates the durable store, migration, and reconciliation
// around a single "current session". It is the only stateful entry point the
// UI layer talks to.
//
// Callers are expected to serialize SwitchSession calls (one user action at
// a time). Debounced saves are not serialized; their correctness rests on
// the forSessionID staleness check in SaveCurrentSession. Competing
// asynchronous navigation loads are ordered solely by the sequence counter
// in HandleNavigation.
type Manager struct {
	store    *Store
	migrator *Migrator

	mu        sync.Mutex
	sessions  []SessionMetadata
	currentID string
	current   *ChatSession
	loading   bool
	available bool
	navSeq    uint64
}

// NewManager creates a manager over the given store and migrator. The
// migrator may be nil when there is no legacy medium to import from.
func NewManager(store *Store, migrator *Migrator) *Manager {
	return &Manager{store: store, loading: true, migrator: migrator}
}

// Initialize probes the storage medium, runs the one-time migration, loads
// the session list, and adopts initialID as the current session when it is
// non-empty and resolvable. Without an initialID the manager stays blank;
// there is no auto-restore of a "last session".
func (m *Manager) Initialize(initialID string) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	available := m.store.Available()

	m.mu.Lock()
	m.available = available
	m.mu.Unlock()

	if !available {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
		return
	}

	if m.migrator != nil {
		m.migrator.Run()
	}

	metadata := m.store.ListMetadata()

	var session *ChatSession
	if initialID != "" {
		// An unknown id in the URL leaves the manager blank.
		session = m.store.Get(initialID)
	}

	m.mu.Lock()
	m.sessions = metadata
	if session != nil {
		m.current = session
		m.currentID = session.ID
	}
	m.loading = false
	m.mu.Unlock()
}

// Sessions returns the cached metadata list, newest first.
func (m *Manager) Sessions() []SessionMetadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionMetadata, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// CurrentSessionID returns the id of the current session, or "".
func (m *Manager) CurrentSessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentID
}

// CurrentSession returns the current full session record, or nil.
func (m *Manager) CurrentSession() *ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// IsLoading reports whether initialization is still in flight.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// IsAvailable reports whether the storage medium is usable.
func (m *Manager) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// RefreshSessions reloads the metadata list from the store. It is also the
// hook to call when the application regains focus, so writes from another
// open instance become visible.
func (m *Manager) RefreshSessions() {
	m.mu.Lock()
	available := m.available
	m.mu.Unlock()
	if !available {
		return
	}

	metadata := m.store.ListMetadata()

	m.mu.Lock()
	m.sessions = metadata
	m.mu.Unlock()
}

// SwitchSession makes id the current session and returns its transportable
// fields for UI hydration. The outgoing session is flushed first when it has
// messages. Returns nil when id is already current or cannot be loaded; in
// the latter case the prior current session is left in place.
func (m *Manager) SwitchSession(id string) *SessionData {
	m.mu.Lock()
	if id == m.currentID {
		m.mu.Unlock()
		return nil
	}
	outgoing := m.current
	m.mu.Unlock()

	// Save-before-switch. Last-writer-wins is fine here: switches are
	// user-serialized.
	if outgoing != nil && len(outgoing.Messages) > 0 {
		m.store.Put(outgoing)
	}

	session := m.store.Get(id)
	if session == nil {
		LogError("Session not found: %s", id)
		return nil
	}

	m.mu.Lock()
	m.current = session
	m.currentID = session.ID
	m.mu.Unlock()

	return &SessionData{
		Messages:     session.Messages,
		XMLSnapshots: session.XMLSnapshots,
		DiagramXML:   session.DiagramXML,
		Thumbnail:    session.Thumbnail,
		History:      session.History,
	}
}

// ClearCurrentSession detaches the current session immediately so the caller
// can start a fresh blank conversation. No stored record is deleted.
func (m *Manager) ClearCurrentSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.currentID = ""
}

// DeleteSession removes a session from the store and reports whether it was
// the current one, in which case the manager is left blank. The metadata
// list is refreshed either way.
func (m *Manager) DeleteSession(id string) (wasCurrent bool) {
	m.mu.Lock()
	wasCurrent = id == m.currentID
	if wasCurrent {
		m.current = nil
		m.currentID = ""
	}
	m.mu.Unlock()

	m.store.Delete(id)
	m.RefreshSessions()
	return wasCurrent
}

// SaveCurrentSession is the debounce-tolerant write path. forSessionID, when
// non-nil, names the session the caller intended to write: if it no longer
// matches the live current session the call is a stale write from an earlier
// debounce timer and is silently discarded. With no current session the
// record is created lazily from the supplied data. Returns whether a record
// was persisted.
func (m *Manager) SaveCurrentSession(data SessionData, forSessionID *string) bool {
	m.mu.Lock()
	if forSessionID != nil && *forSessionID != m.currentID {
		m.mu.Unlock()
		return false
	}
	current := m.current
	m.mu.Unlock()

	if current == nil {
		return m.createFromData(data)
	}

	updated := *current
	updated.Messages = data.Messages
	updated.XMLSnapshots = data.XMLSnapshots
	updated.DiagramXML = data.DiagramXML
	// Optional fields keep their previous value when not supplied.
	if data.Thumbnail != "" {
		updated.Thumbnail = data.Thumbnail
	}
	if data.History != nil {
		updated.History = data.History
	}
	updated.UpdatedAt = nowMillis()
	if updated.Title == DefaultTitle && len(data.Messages) > 0 {
		updated.Title = ExtractTitle(data.Messages)
	}

	if !m.store.Put(&updated) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// The session may have been switched away from while the write was in
	// flight; only adopt the result if it is still current.
	if m.currentID == updated.ID {
		m.current = &updated
	}
	meta := updated.Metadata()
	for i := range m.sessions {
		if m.sessions[i].ID == meta.ID {
			m.sessions[i] = meta
			break
		}
	}
	return true
}

// createFromData lazily creates and adopts a session holding the supplied
// data.
func (m *Manager) createFromData(data SessionData) bool {
	session := NewEmptySession()
	session.Messages = data.Messages
	session.XMLSnapshots = data.XMLSnapshots
	session.DiagramXML = data.DiagramXML
	session.Thumbnail = data.Thumbnail
	session.History = data.History
	session.Title = ExtractTitle(data.Messages)

	if !m.store.Put(session) {
		return false
	}
	m.store.EnforceLimit(DefaultMaxSessions)

	m.mu.Lock()
	m.current = session
	m.currentID = session.ID
	m.mu.Unlock()

	m.RefreshSessions()
	return true
}

// HandleNavigation reacts to the surrounding application navigating to a URL
// that names a session. Each call increments a sequence counter; the loaded
// result is applied only if no newer navigation started while the load was
// in flight, so a slow load for an old URL can never clobber a newer one.
func (m *Manager) HandleNavigation(id string) {
	if id == "" {
		// Clearing is explicit via ClearCurrentSession, never URL-driven.
		return
	}

	m.mu.Lock()
	if !m.available {
		m.mu.Unlock()
		return
	}
	m.navSeq++
	seq := m.navSeq
	m.mu.Unlock()

	session := m.store.Get(id)
	m.applyNavigation(seq, session)
}

// applyNavigation installs a navigation load result unless it has been
// superseded.
func (m *Manager) applyNavigation(seq uint64, session *ChatSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.navSeq {
		return // a newer navigation won
	}
	if session == nil {
		return
	}
	if m.currentID != session.ID {
		m.current = session
		m.currentID = session.ID
	}
}
