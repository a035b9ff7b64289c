package testutil

import (
	"path/filepath"
	"testing"

	"github.com/drawkit/draw-session/internal"
)

// CreateTestStore creates a session store backed by a database in a
// temporary directory, cleaned up with the test.
func CreateTestStore(t *testing.T, opts ...internal.StoreOption) *internal.Store {
	t.Helper()
	store := internal.NewStore(filepath.Join(t.TempDir(), "sessions.db"), opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// CreateDataDir creates a data directory seeded with n sample sessions and
// returns its path, for commands that resolve the store from a directory.
func CreateDataDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	store := internal.NewStore(filepath.Join(dir, "sessions.db"))
	defer func() { _ = store.Close() }()
	for i, session := range internal.CreateTestSessions(n) {
		if !store.Put(session) {
			t.Fatalf("Failed to seed session %d", i)
		}
	}
	return dir
}

// SeedSessions stores n sample sessions and returns their ids, oldest first.
func SeedSessions(t *testing.T, store *internal.Store, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i, session := range internal.CreateTestSessions(n) {
		if !store.Put(session) {
			t.Fatalf("Failed to seed session %d", i)
		}
		ids = append(ids, session.ID)
	}
	return ids
}
