// Package file implements the record-store contract on a flat file of
// fixed-size records guarded by advisory flock locks.
//
// The layout is deliberately simple: no header, no index, records packed
// back to back in append order. Any other flock-aware process can safely
// share the files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// Store is a flock-guarded flat-file record store for one entity kind.
type Store[T any] struct {
	path  string
	mode  os.FileMode
	codec records.Codec[T]
}

// New creates a store over path. The backing file is created lazily on first
// append; a missing file reads as an empty record set.
func New[T any](path string, mode os.FileMode) *Store[T] {
	return &Store[T]{
		path:  path,
		mode:  mode,
		codec: records.NewCodec[T](),
	}
}

// Path returns the backing file path.
func (s *Store[T]) Path() string { return s.path }

func (s *Store[T]) Scan(ctx context.Context, fn func(rec T) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := lockShared(f); err != nil {
		return err
	}
	defer unlock(f)

	return s.scanLocked(ctx, f, func(rec T, _ int64) bool { return fn(rec) })
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

	data, err := s.codec.Encode(&rec)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, s.mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return err
	}
	defer unlock(f)

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return nil
}

func (s *Store[T]) AppendAllocated(ctx context.Context, idOf func(rec *T) int32, build func(id int32) T) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Read/write so the max-ID scan and the append happen under one lock.
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, s.mode)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return 0, err
	}
	defer unlock(f)

	var maxID int32
	err = s.scanLocked(ctx, f, func(rec T, _ int64) bool {
		if id := idOf(&rec); id > maxID {
			maxID = id
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	next := maxID + 1
	rec := build(next)
	data, err := s.codec.Encode(&rec)
	if err != nil {
		return 0, err
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return 0, fmt.Errorf("seek %s: %w", s.path, err)
	}
	if _, err := f.Write(data); err != nil {
		return 0, fmt.Errorf("append to %s: %w", s.path, err)
	}
	return next, nil
}

func (s *Store[T]) UpdateFirst(ctx context.Context, match func(rec *T) bool, mutate func(rec *T)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrNotFound
		}
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return err
	}
	defer unlock(f)

	// Locate and overwrite without releasing the lock; the offset is only
	// valid while it is held.
	var target *T
	var offset int64 = -1
	err = s.scanLocked(ctx, f, func(rec T, off int64) bool {
		if match(&rec) {
			target = &rec
			offset = off
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if offset < 0 {
		return store.ErrNotFound
	}

	mutate(target)
	data, err := s.codec.Encode(target)
	if err != nil {
		return err
	}

	if _, err := f.WriteAt(data, offset); err != nil {
		return fmt.Errorf("overwrite record in %s: %w", s.path, err)
	}
	return nil
}

func (s *Store[T]) RewriteExcluding(ctx context.Context, drop func(rec *T) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, store.ErrNotFound
		}
		return 0, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return 0, err
	}
	defer unlock(f)

	tmpPath := s.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.mode)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", tmpPath, err)
	}
	defer tmp.Close()

	removed := 0
	var writeErr error
	err = s.scanLocked(ctx, f, func(rec T, _ int64) bool {
		if drop(&rec) {
			removed++
			return true
		}
		data, encErr := s.codec.Encode(&rec)
		if encErr != nil {
			writeErr = encErr
			return false
		}
		if _, wErr := tmp.Write(data); wErr != nil {
			writeErr = fmt.Errorf("write %s: %w", tmpPath, wErr)
			return false
		}
		return true
	})
	if err == nil {
		err = writeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	if removed == 0 {
		os.Remove(tmpPath)
		return 0, store.ErrNotFound
	}

	// The original stays the source of truth until the temp file is fully
	// on disk and renamed over it.
	if err := tmp.Sync(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("replace %s: %w", s.path, err)
	}
	return removed, nil
}

// scanLocked reads records sequentially from f, which must already be locked.
// It rewinds to the start first and reports each record's byte offset.
func (s *Store[T]) scanLocked(ctx context.Context, f *os.File, fn func(rec T, offset int64) bool) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", s.path, err)
	}

	size := s.codec.Size()
	buf := make([]byte, size)
	var offset int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := io.ReadFull(f, buf)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			// Trailing partial record, likely from an interrupted append.
			// Only whole records are consumed.
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", s.path, err)
		}

		var rec T
		if err := s.codec.Decode(buf, &rec); err != nil {
			return fmt.Errorf("%s at offset %d: %w", filepath.Base(s.path), offset, err)
		}
		if !fn(rec, offset) {
			return nil
		}
		offset += int64(size)
	}
}
