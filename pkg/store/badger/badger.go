// Package badger implements the record-store contract on BadgerDB.
//
// Each entity kind lives under its own key prefix; record keys carry a
// monotonically increasing insertion sequence encoded big-endian, so iterating
// a prefix in key order reproduces append order exactly. Scan-order semantics
// therefore match the flat-file backend, including which record wins when
// duplicates exist.
package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// DB wraps one BadgerDB instance shared by all entity stores.
//
// A single read-write mutex stands in for the per-file advisory locks of the
// flat-file backend: shared for scans, exclusive for mutations. Coarse, but it
// keeps the same blocking discipline the rest of the system reasons about.
type DB struct {
	db *badger.DB
	mu sync.RWMutex
}

// Open opens (or creates) the database in dir. With inMemory set, nothing
// touches disk; used by tests.
func Open(dir string, inMemory bool) (*DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Store is a badger-backed record store for one entity kind.
type Store[T any] struct {
	db     *DB
	prefix []byte // rec/<kind>/
	seqKey []byte // seq/<kind>
	codec  records.Codec[T]
}

// New creates a store for the given entity kind inside db. Kind names the key
// namespace, e.g. "students".
func New[T any](db *DB, kind string) *Store[T] {
	return &Store[T]{
		db:     db,
		prefix: []byte("rec/" + kind + "/"),
		seqKey: []byte("seq/" + kind),
		codec:  records.NewCodec[T](),
	}
}

func (s *Store[T]) recordKey(seq uint64) []byte {
	key := make([]byte, len(s.prefix)+8)
	copy(key, s.prefix)
	binary.BigEndian.PutUint64(key[len(s.prefix):], seq)
	return key
}

func (s *Store[T]) Scan(ctx context.Context, fn func(rec T) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.db.View(func(txn *badger.Txn) error {
		return s.scanTxn(ctx, txn, func(rec T, _ []byte) bool { return fn(rec) })
	})
}

func (s *Store[T]) FindFirst(ctx context.Context, match func(rec *T) bool) (T, error) {
	var found T
	ok := false
	err := s.Scan(ctx, func(rec T) bool {
		if match(&rec) {
			found = rec
			ok = true
			return false
		}
		return true
	})
	if err != nil {
		return found, err
	}
	if !ok {
		return found, store.ErrNotFound
	}
	return found, nil
}

func (s *Store[T]) Append(ctx context.Context, rec T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return s.db.db.Update(func(txn *badger.Txn) error {
		return s.appendTxn(txn, &rec)
	})
}

func (s *Store[T]) AppendAllocated(ctx context.Context, idOf func(rec *T) int32, build func(id int32) T) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var allocated int32
	err := s.db.db.Update(func(txn *badger.Txn) error {
		var maxID int32
		if err := s.scanTxn(ctx, txn, func(rec T, _ []byte) bool {
			if id := idOf(&rec); id > maxID {
				maxID = id
			}
			return true
		}); err != nil {
			return err
		}

		allocated = maxID + 1
		rec := build(allocated)
		return s.appendTxn(txn, &rec)
	})
	if err != nil {
		return 0, err
	}
	return allocated, nil
}

func (s *Store[T]) UpdateFirst(ctx context.Context, match func(rec *T) bool, mutate func(rec *T)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return s.db.db.Update(func(txn *badger.Txn) error {
		var target *T
		var targetKey []byte
		if err := s.scanTxn(ctx, txn, func(rec T, key []byte) bool {
			if match(&rec) {
				target = &rec
				targetKey = key
				return false
			}
			return true
		}); err != nil {
			return err
		}
		if target == nil {
			return store.ErrNotFound
		}

		mutate(target)
		data, err := s.codec.Encode(target)
		if err != nil {
			return err
		}
		return txn.Set(targetKey, data)
	})
}

func (s *Store[T]) RewriteExcluding(ctx context.Context, drop func(rec *T) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	removed := 0
	err := s.db.db.Update(func(txn *badger.Txn) error {
		var doomed [][]byte
		if err := s.scanTxn(ctx, txn, func(rec T, key []byte) bool {
			if drop(&rec) {
				doomed = append(doomed, key)
			}
			return true
		}); err != nil {
			return err
		}
		if len(doomed) == 0 {
			return store.ErrNotFound
		}

		for _, key := range doomed {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete record: %w", err)
			}
		}
		removed = len(doomed)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// scanTxn iterates the kind's records in insertion order inside txn. The key
// passed to fn is a copy and stays valid after iteration.
func (s *Store[T]) scanTxn(ctx context.Context, txn *badger.Txn, fn func(rec T, key []byte) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = s.prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(s.prefix); it.ValidForPrefix(s.prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := it.Item()
		var rec T
		err := item.Value(func(val []byte) error {
			return s.codec.Decode(val, &rec)
		})
		if err != nil {
			return fmt.Errorf("read record %q: %w", item.Key(), err)
		}

		if !fn(rec, item.KeyCopy(nil)) {
			return nil
		}
	}
	return nil
}

// appendTxn stores rec under the next insertion sequence within txn.
func (s *Store[T]) appendTxn(txn *badger.Txn, rec *T) error {
	var seq uint64
	item, err := txn.Get(s.seqKey)
	switch {
	case err == badger.ErrKeyNotFound:
		seq = 0
	case err != nil:
		return fmt.Errorf("read sequence: %w", err)
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence value (%d bytes)", len(val))
			}
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return err
		}
	}

	seq++
	data, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}
	if err := txn.Set(s.recordKey(seq), data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], seq)
	if err := txn.Set(s.seqKey, seqBuf[:]); err != nil {
		return fmt.Errorf("write sequence: %w", err)
	}
	return nil
}
