package internal

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded signals that a write could not fit in the store's byte
// budget (or the underlying database reported it is full).
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrUnavailable signals that the storage medium cannot be opened in this
// environment. Store operations degrade to no-ops rather than returning it.
var ErrUnavailable = errors.New("session store unavailable")

// StoreError represents a failure inside the durable session store.
type StoreError struct {
	Op  string // "open", "get", "put", "delete", "list"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MigrationError represents a failure while importing legacy flat storage.
type MigrationError struct {
	Step string // "parse", "write", "verify", "flag"
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration error [%s]: %v", e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
