package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FlatStore is a flat string-to-string namespace persisted as a single JSON
// document. It is the Go analogue of the browser's localStorage: the legacy
// conversation data and the migration flag live here, distinct from the
// durable session database.
type FlatStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
	loaded bool
}

// NewFlatStore creates a flat store backed by the given file. The file is
// read lazily on first access; a missing file is an empty namespace.
func NewFlatStore(path string) *FlatStore {
	return &FlatStore{path: path}
}

func (f *FlatStore) load() {
	if f.loaded {
		return
	}
	f.loaded = true
	f.values = make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			LogWarn("Failed to read flat store %s: %v", f.path, err)
		}
		return
	}
	if err := json.Unmarshal(data, &f.values); err != nil {
		LogWarn("Flat store %s is corrupt, starting empty: %v", f.path, err)
		f.values = make(map[string]string)
	}
}

func (f *FlatStore) flush() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, data, 0644)
}

// Get returns the value stored under key, or "" if absent.
func (f *FlatStore) Get(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	return f.values[key]
}

// Has reports whether key is present, distinguishing an empty value from an
// absent one.
func (f *FlatStore) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	_, ok := f.values[key]
	return ok
}

// Set stores value under key and persists the namespace.
func (f *FlatStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.values[key] = value
	return f.flush()
}

// Delete removes key and persists the namespace. No-op if absent.
func (f *FlatStore) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	changed := false
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.flush()
}
