package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

func newTestStore(t *testing.T) *Store[records.Student] {
	t.Helper()
	return New[records.Student](filepath.Join(t.TempDir(), "students.dat"), 0o644)
}

func studentID(s *records.Student) int32 { return s.ID }

func TestScanMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)

	count := 0
	if err := s.Scan(context.Background(), func(records.Student) bool {
		count++
		return true
	}); err != nil {
		t.Fatalf("Scan on missing file: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 records, got %d", count)
	}
}

func TestAppendAndScanOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names := []string{"alice", "bob", "carol"}
	for _, name := range names {
		if err := s.Append(ctx, records.NewStudent(name, name, name+"@x.edu")); err != nil {
			t.Fatalf("Append(%s): %v", name, err)
		}
	}

	var got []string
	if err := s.Scan(ctx, func(rec records.Student) bool {
		got = append(got, rec.GetUsername())
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(got) != len(names) {
		t.Fatalf("expected %d records, got %d", len(names), len(got))
	}
	for i, name := range names {
		if got[i] != name {
			t.Errorf("record %d: expected %q, got %q", i, name, got[i])
		}
	}
}

func TestAppendAllocatedIDsAreMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for want := int32(1); want <= 5; want++ {
		id, err := s.AppendAllocated(ctx, studentID, func(id int32) records.Student {
			rec := records.NewStudent("u", "n", "e")
			rec.ID = id
			return rec
		})
		if err != nil {
			t.Fatalf("AppendAllocated: %v", err)
		}
		if id != want {
			t.Fatalf("expected ID %d, got %d", want, id)
		}
	}
}

func TestAppendAllocatedConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AppendAllocated(ctx, studentID, func(id int32) records.Student {
				rec := records.NewStudent("u", "n", "e")
				rec.ID = id
				return rec
			})
			if err != nil {
				t.Errorf("AppendAllocated: %v", err)
			}
		}()
	}
	wg.Wait()

	// Allocation and append share one exclusive lock, so no two records may
	// end up with the same ID.
	seen := make(map[int32]bool)
	if err := s.Scan(ctx, func(rec records.Student) bool {
		if seen[rec.ID] {
			t.Errorf("duplicate ID %d", rec.ID)
		}
		seen[rec.ID] = true
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(seen) != workers {
		t.Fatalf("expected %d records, got %d", workers, len(seen))
	}
}

func TestFindFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.FindFirst(ctx, func(*records.Student) bool { return true }); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := s.Append(ctx, records.NewStudent("alice", "Alice", "a@x.edu")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, records.NewStudent("bob", "Bob", "b@x.edu")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rec, err := s.FindFirst(ctx, func(r *records.Student) bool { return r.GetUsername() == "bob" })
	if err != nil {
		t.Fatalf("FindFirst: %v", err)
	}
	if rec.GetName() != "Bob" {
		t.Errorf("expected name Bob, got %q", rec.GetName())
	}

	if _, err := s.FindFirst(ctx, func(r *records.Student) bool { return r.GetUsername() == "nobody" }); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFirstInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		if err := s.Append(ctx, records.NewStudent(name, name, name+"@x.edu")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	err := s.UpdateFirst(ctx,
		func(r *records.Student) bool { return r.GetUsername() == "bob" },
		func(r *records.Student) { r.Active = 0 })
	if err != nil {
		t.Fatalf("UpdateFirst: %v", err)
	}

	var names []string
	var bobActive bool
	if err := s.Scan(ctx, func(rec records.Student) bool {
		names = append(names, rec.GetUsername())
		if rec.GetUsername() == "bob" {
			bobActive = rec.IsActive()
		}
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(names) != 3 {
		t.Fatalf("update must not change record count, got %d", len(names))
	}
	if bobActive {
		t.Error("bob should be inactive after update")
	}
}

func TestUpdateFirstNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpdateFirst(ctx,
		func(*records.Student) bool { return true },
		func(*records.Student) {})
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound on missing file, got %v", err)
	}
}

func TestRewriteExcluding(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		if err := s.Append(ctx, records.NewStudent(name, name, name+"@x.edu")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	removed, err := s.RewriteExcluding(ctx, func(r *records.Student) bool {
		return r.GetUsername() == "bob"
	})
	if err != nil {
		t.Fatalf("RewriteExcluding: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	var left []string
	if err := s.Scan(ctx, func(rec records.Student) bool {
		left = append(left, rec.GetUsername())
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(left) != 2 || left[0] != "alice" || left[1] != "carol" {
		t.Fatalf("unexpected survivors: %v", left)
	}

	// No stray temp file after the rename.
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestRewriteExcludingNoMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, records.NewStudent("alice", "Alice", "a@x.edu")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := s.RewriteExcluding(ctx, func(*records.Student) bool { return false }); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Original must be untouched.
	count := 0
	if err := s.Scan(ctx, func(records.Student) bool { count++; return true }); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}
}

func TestScanIgnoresTrailingPartialRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, records.NewStudent("alice", "Alice", "a@x.edu")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.OpenFile(s.Path(), os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	count := 0
	if err := s.Scan(ctx, func(records.Student) bool { count++; return true }); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 whole record, got %d", count)
	}
}
