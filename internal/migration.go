package internal

import "encoding/json"

// Legacy flat-storage keys. These are the exact keys the pre-database client
// wrote, carried verbatim so existing data is found.
const (
	LegacyMessagesKey  = "next-ai-draw-io-messages"
	LegacySnapshotsKey = "next-ai-draw-io-xml-snapshots"
	LegacyDiagramKey   = "next-ai-draw-io-diagram-xml"
	MigrationFlagKey   = "next-ai-drawio-migrated-to-idb"
)

// ProcessState holds the flags that live in the flat namespace alongside the
// legacy data. Read once at startup, persisted indefinitely.
type ProcessState struct {
	Migrated bool
}

// LoadProcessState reads the flag fields from the flat store.
func LoadProcessState(flat *FlatStore) ProcessState {
	return ProcessState{
		Migrated: flat.Has(MigrationFlagKey),
	}
}

// Migrator performs the one-time transplant of the legacy flat-storage
// conversation into a single session record in the durable store.
type Migrator struct {
	store *Store
	flat  *FlatStore
	state ProcessState
}

// NewMigrator creates a migrator over the given stores, reading the
// completion flag immediately.
func NewMigrator(store *Store, flat *FlatStore) *Migrator {
	return &Migrator{
		store: store,
		flat:  flat,
		state: LoadProcessState(flat),
	}
}

// Run migrates the legacy conversation, if any, into a new session record.
// It runs at most once: a set completion flag makes it an immediate no-op.
// The flag is only set, and the legacy keys only erased, after the written
// record has been read back successfully; any failure leaves the legacy data
// intact so the next start can retry. Returns the new session's id, or ""
// when nothing was migrated.
func (m *Migrator) Run() string {
	if m.state.Migrated {
		return ""
	}
	if !m.store.Available() {
		return ""
	}

	savedMessages := m.flat.Get(LegacyMessagesKey)
	if savedMessages == "" {
		// Nothing to migrate; don't check again next start.
		m.complete()
		return ""
	}

	var rawMessages []interface{}
	if err := json.Unmarshal([]byte(savedMessages), &rawMessages); err != nil {
		LogError("Migration failed: %v", &MigrationError{Step: "parse", Err: err})
		return ""
	}
	if len(rawMessages) == 0 {
		m.complete()
		return ""
	}

	sanitized := SanitizeMessages(rawMessages)

	snapshots := []XMLSnapshot{}
	if saved := m.flat.Get(LegacySnapshotsKey); saved != "" {
		if err := json.Unmarshal([]byte(saved), &snapshots); err != nil {
			LogError("Migration failed: %v", &MigrationError{Step: "parse", Err: err})
			return ""
		}
	}

	session := NewEmptySession()
	session.Title = ExtractTitle(sanitized)
	session.Messages = sanitized
	session.XMLSnapshots = snapshots
	session.DiagramXML = m.flat.Get(LegacyDiagramKey)

	if !m.store.Put(session) {
		LogWarn("Migration failed to write session - keeping legacy data for retry")
		return ""
	}
	if m.store.Get(session.ID) == nil {
		LogWarn("Migration write did not verify - keeping legacy data for retry")
		return ""
	}

	m.complete()
	return session.ID
}

// complete sets the flag and erases the legacy keys.
func (m *Migrator) complete() {
	if err := m.flat.Set(MigrationFlagKey, "true"); err != nil {
		LogError("Migration failed: %v", &MigrationError{Step: "flag", Err: err})
		return
	}
	m.state.Migrated = true
	if err := m.flat.Delete(LegacyMessagesKey, LegacySnapshotsKey, LegacyDiagramKey); err != nil {
		LogWarn("Failed to erase legacy keys: %v", err)
	}
}
