package badger

import (
	"context"
	"testing"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("", true)
	if err != nil {
		t.Fatalf("Open in-memory badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScanEmptyKind(t *testing.T) {
	db := newTestDB(t)
	s := New[records.Course](db, "courses")

	count := 0
	if err := s.Scan(context.Background(), func(records.Course) bool {
		count++
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty scan, got %d records", count)
	}
}

func TestAppendPreservesInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	s := New[records.Course](db, "courses")
	ctx := context.Background()

	codes := []string{"CS101", "CS102", "CS103"}
	for _, code := range codes {
		if err := s.Append(ctx, records.NewCourse(code, "c", 1, 10)); err != nil {
			t.Fatalf("Append(%s): %v", code, err)
		}
	}

	var got []string
	if err := s.Scan(ctx, func(rec records.Course) bool {
		got = append(got, rec.GetCode())
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for i, code := range codes {
		if got[i] != code {
			t.Errorf("record %d: expected %q, got %q", i, code, got[i])
		}
	}
}

func TestKindsAreIsolated(t *testing.T) {
	db := newTestDB(t)
	students := New[records.Student](db, "students")
	faculty := New[records.Faculty](db, "faculty")
	ctx := context.Background()

	if err := students.Append(ctx, records.NewStudent("alice", "Alice", "a@x.edu")); err != nil {
		t.Fatalf("Append student: %v", err)
	}

	count := 0
	if err := faculty.Scan(ctx, func(records.Faculty) bool { count++; return true }); err != nil {
		t.Fatalf("Scan faculty: %v", err)
	}
	if count != 0 {
		t.Fatalf("faculty kind must not see student records, got %d", count)
	}
}

func TestAppendAllocated(t *testing.T) {
	db := newTestDB(t)
	s := New[records.Enrollment](db, "enrollments")
	ctx := context.Background()

	for want := int32(1); want <= 3; want++ {
		id, err := s.AppendAllocated(ctx,
			func(e *records.Enrollment) int32 { return e.ID },
			func(id int32) records.Enrollment {
				e := records.NewEnrollment(1, 2, 0)
				e.ID = id
				return e
			})
		if err != nil {
			t.Fatalf("AppendAllocated: %v", err)
		}
		if id != want {
			t.Fatalf("expected ID %d, got %d", want, id)
		}
	}
}

func TestUpdateFirst(t *testing.T) {
	db := newTestDB(t)
	s := New[records.Course](db, "courses")
	ctx := context.Background()

	if err := s.Append(ctx, records.NewCourse("CS101", "Intro", 1, 10)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	err := s.UpdateFirst(ctx,
		func(c *records.Course) bool { return c.GetCode() == "CS101" },
		func(c *records.Course) { c.EnrolledCount++ })
	if err != nil {
		t.Fatalf("UpdateFirst: %v", err)
	}

	rec, err := s.FindFirst(ctx, func(c *records.Course) bool { return c.GetCode() == "CS101" })
	if err != nil {
		t.Fatalf("FindFirst: %v", err)
	}
	if rec.EnrolledCount != 1 {
		t.Fatalf("expected enrolled count 1, got %d", rec.EnrolledCount)
	}

	err = s.UpdateFirst(ctx,
		func(c *records.Course) bool { return c.GetCode() == "NOPE" },
		func(*records.Course) {})
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRewriteExcluding(t *testing.T) {
	db := newTestDB(t)
	s := New[records.Enrollment](db, "enrollments")
	ctx := context.Background()

	for i := int32(1); i <= 3; i++ {
		e := records.NewEnrollment(i, 100, 0)
		e.ID = i
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	removed, err := s.RewriteExcluding(ctx, func(e *records.Enrollment) bool { return e.StudentID == 2 })
	if err != nil {
		t.Fatalf("RewriteExcluding: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	var left []int32
	if err := s.Scan(ctx, func(rec records.Enrollment) bool {
		left = append(left, rec.StudentID)
		return true
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(left) != 2 || left[0] != 1 || left[1] != 3 {
		t.Fatalf("unexpected survivors: %v", left)
	}

	if _, err := s.RewriteExcluding(ctx, func(*records.Enrollment) bool { return false }); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
