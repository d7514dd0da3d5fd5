package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// studentByUsername resolves the caller's student record.
func (p *Portal) studentByUsername(ctx context.Context, username string) (records.Student, error) {
	s, err := p.stores.Students.FindFirst(ctx, func(s *records.Student) bool {
		return s.GetUsername() == username
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return records.Student{}, notFoundf("Student not found")
		}
		return records.Student{}, storagef(err, "Cannot read student data")
	}
	return s, nil
}

// Enroll adds the caller to a course. The enrollment append and the seat
// counter increment span two files, so the increment failure path removes
// the just-added enrollment again before reporting the error.
func (p *Portal) Enroll(ctx context.Context, username string, courseID int32) (Result, error) {
	student, err := p.studentByUsername(ctx, username)
	if err != nil {
		return Result{}, err
	}
	if !student.IsActive() {
		return Result{}, authzf("Student account is inactive")
	}

	_, err = p.stores.Enrollments.FindFirst(ctx, func(e *records.Enrollment) bool {
		return e.StudentID == student.ID && e.CourseID == courseID
	})
	if err == nil {
		return Result{}, conflictf("Already enrolled in this course")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Result{}, storagef(err, "Cannot read enrollment file")
	}

	course, err := p.stores.Courses.FindFirst(ctx, func(c *records.Course) bool {
		return c.ID == courseID
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Course not found")
		}
		return Result{}, storagef(err, "Cannot read course file")
	}
	if course.EnrolledCount >= course.MaxSeats {
		return Result{}, capacityf("Course is full")
	}

	steps := []sagaStep{
		{
			name: "append enrollment",
			forward: func(ctx context.Context) error {
				_, err := p.stores.Enrollments.AppendAllocated(ctx,
					func(e *records.Enrollment) int32 { return e.ID },
					func(id int32) records.Enrollment {
						e := records.NewEnrollment(student.ID, courseID, time.Now().Unix())
						e.ID = id
						return e
					})
				if err != nil {
					return storagef(err, "Failed to enroll")
				}
				return nil
			},
			compensate: func(ctx context.Context) error {
				_, err := p.stores.Enrollments.RewriteExcluding(ctx, func(e *records.Enrollment) bool {
					return e.StudentID == student.ID && e.CourseID == courseID
				})
				if errors.Is(err, store.ErrNotFound) {
					return nil
				}
				return err
			},
		},
		{
			name: "increment seat count",
			forward: func(ctx context.Context) error {
				// The free-seat condition is re-checked inside the course
				// file's exclusive lock. The earlier capacity read happened
				// under a shared lock, so a racing enrollment may have taken
				// the last seat since; matching on a free seat here keeps
				// enrolled_count within max_seats for every interleaving.
				err := p.stores.Courses.UpdateFirst(ctx,
					func(c *records.Course) bool {
						return c.ID == courseID && c.EnrolledCount < c.MaxSeats
					},
					func(c *records.Course) { c.EnrolledCount++ })
				if errors.Is(err, store.ErrNotFound) {
					return capacityf("Course is full")
				}
				if err != nil {
					return storagef(err, "Failed to update course")
				}
				return nil
			},
		},
	}
	if err := runSaga(ctx, steps); err != nil {
		return Result{}, err
	}
	return success(fmt.Sprintf("Enrolled in course %s (%s)", course.GetCode(), course.GetName())), nil
}

// Unenroll removes the caller from a course. If the seat counter decrement
// fails after the enrollment row is gone, the removal stands and the caller
// gets a warning instead of an error; the counter self-corrects on the next
// successful enroll/unenroll cycle.
func (p *Portal) Unenroll(ctx context.Context, username string, courseID int32) (Result, error) {
	student, err := p.studentByUsername(ctx, username)
	if err != nil {
		return Result{}, err
	}

	_, err = p.stores.Enrollments.FindFirst(ctx, func(e *records.Enrollment) bool {
		return e.StudentID == student.ID && e.CourseID == courseID
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Not enrolled in this course")
		}
		return Result{}, storagef(err, "Cannot read enrollment file")
	}

	course, err := p.stores.Courses.FindFirst(ctx, func(c *records.Course) bool {
		return c.ID == courseID
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Course not found")
		}
		return Result{}, storagef(err, "Cannot read course file")
	}

	if _, err := p.stores.Enrollments.RewriteExcluding(ctx, func(e *records.Enrollment) bool {
		return e.StudentID == student.ID && e.CourseID == courseID
	}); err != nil {
		return Result{}, storagef(err, "Failed to unenroll")
	}

	err = p.stores.Courses.UpdateFirst(ctx,
		func(c *records.Course) bool { return c.ID == courseID },
		func(c *records.Course) {
			if c.EnrolledCount > 0 {
				c.EnrolledCount--
			}
		})
	if err != nil {
		return warning("Unenrolled but failed to update course count"), nil
	}
	return success(fmt.Sprintf("Unenrolled from course %s", course.GetCode())), nil
}

// ViewEnrolledCourses lists the courses the caller is enrolled in, joined
// against the catalog. Rows whose course no longer resolves are skipped.
func (p *Portal) ViewEnrolledCourses(ctx context.Context, username string) (Result, error) {
	student, err := p.studentByUsername(ctx, username)
	if err != nil {
		return Result{}, err
	}

	var courseIDs []int32
	err = p.stores.Enrollments.Scan(ctx, func(e records.Enrollment) bool {
		if e.StudentID == student.ID {
			courseIDs = append(courseIDs, e.CourseID)
		}
		return true
	})
	if err != nil {
		return Result{}, storagef(err, "Cannot read enrollment file")
	}

	wanted := make(map[int32]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}

	var b strings.Builder
	b.WriteString("Enrolled Courses:\n")
	b.WriteString("=================\n")
	n := 0
	err = p.stores.Courses.Scan(ctx, func(c records.Course) bool {
		if !wanted[c.ID] {
			return true
		}
		row := fmt.Sprintf("Course ID: %d | Code: %s | Name: %s | Seats: %d/%d\n",
			c.ID, c.GetCode(), c.GetName(), c.EnrolledCount, c.MaxSeats)
		if b.Len()+len(row) >= listingLimit {
			return false
		}
		b.WriteString(row)
		n++
		return true
	})
	if err != nil {
		return Result{}, storagef(err, "Cannot read course file")
	}
	if n == 0 {
		return info("No courses enrolled"), nil
	}
	return success(b.String()), nil
}
