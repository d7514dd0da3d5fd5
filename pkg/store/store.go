// Package store defines the record-store contract shared by all backends.
//
// A Store holds an unordered, append-only sequence of fixed-layout records of
// one entity kind. Lookups are full sequential scans in file order; no backend
// may introduce an index that changes which record wins when duplicates exist.
//
// Two backends implement the contract: a flock-guarded flat file
// (pkg/store/file) and an embedded BadgerDB key-value store (pkg/store/badger).
// Higher layers only see this interface, so the backing can be swapped without
// touching domain logic.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by FindFirst, UpdateFirst and RewriteExcluding when
// no record matched. Absence of the backing file is NOT an error: it reads as
// an empty record set.
var ErrNotFound = errors.New("record not found")

// Store is the per-entity record store.
//
// Every method acquires the backend's advisory lock for the duration of the
// call: shared for Scan and FindFirst, exclusive for everything else. Locks
// are scoped to one store; there is no cross-store transaction. Multi-store
// operations must compensate explicitly on partial failure.
type Store[T any] interface {
	// Scan visits every record in append order under a shared lock.
	// The callback returns true to continue, false to stop early.
	Scan(ctx context.Context, fn func(rec T) bool) error

	// FindFirst returns the first record in scan order matching the
	// predicate, or ErrNotFound.
	FindFirst(ctx context.Context, match func(rec *T) bool) (T, error)

	// Append adds a record at the end under an exclusive lock, creating the
	// backing file on first use.
	Append(ctx context.Context, rec T) error

	// AppendAllocated assigns the next sequential ID (1 + max existing, 1 for
	// an empty store) and appends the built record, all under one exclusive
	// lock. idOf extracts the ID of an existing record; build produces the
	// record to append for the allocated ID.
	AppendAllocated(ctx context.Context, idOf func(rec *T) int32, build func(id int32) T) (int32, error)

	// UpdateFirst locates the first record matching the predicate, applies
	// mutate to it and overwrites it in place. Locate and overwrite happen
	// under one held exclusive lock so the record's position cannot shift
	// in between. Returns ErrNotFound if nothing matched.
	UpdateFirst(ctx context.Context, match func(rec *T) bool, mutate func(rec *T)) error

	// RewriteExcluding removes every record matching the predicate by
	// rewriting the survivors and atomically replacing the original data.
	// Returns the number of records removed; ErrNotFound if none matched,
	// in which case the original data is untouched.
	RewriteExcluding(ctx context.Context, drop func(rec *T) bool) (int, error)
}
