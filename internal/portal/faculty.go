package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// facultyByUsername resolves the caller's faculty record.
func (p *Portal) facultyByUsername(ctx context.Context, username string) (records.Faculty, error) {
	f, err := p.stores.Faculty.FindFirst(ctx, func(f *records.Faculty) bool {
		return f.GetUsername() == username
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return records.Faculty{}, notFoundf("Faculty not found")
		}
		return records.Faculty{}, storagef(err, "Cannot read faculty file")
	}
	return f, nil
}

// AddCourse creates a course owned by the calling faculty member. Course
// codes are unique across the catalog.
func (p *Portal) AddCourse(ctx context.Context, username, code, name string, maxSeats int32) (Result, error) {
	_, err := p.stores.Courses.FindFirst(ctx, func(c *records.Course) bool {
		return c.GetCode() == code
	})
	if err == nil {
		return Result{}, conflictf("Course code '%s' already exists", code)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Result{}, storagef(err, "Failed to check course code existence")
	}

	fac, err := p.facultyByUsername(ctx, username)
	if err != nil {
		return Result{}, err
	}

	id, err := p.stores.Courses.AppendAllocated(ctx,
		func(c *records.Course) int32 { return c.ID },
		func(id int32) records.Course {
			c := records.NewCourse(code, name, fac.ID, maxSeats)
			c.ID = id
			return c
		})
	if err != nil {
		return Result{}, storagef(err, "Failed to write course record")
	}
	return success(fmt.Sprintf("Course added with ID %d", id)), nil
}

// RemoveCourse deletes a course the caller owns. Enrollments referencing
// the removed course are left in place; joins skip them from then on.
func (p *Portal) RemoveCourse(ctx context.Context, username string, courseID int32) (Result, error) {
	fac, err := p.facultyByUsername(ctx, username)
	if err != nil {
		return Result{}, err
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
	if course.FacultyID != fac.ID {
		return Result{}, authzf("You can only remove courses you created")
	}

	if _, err := p.stores.Courses.RewriteExcluding(ctx, func(c *records.Course) bool {
		return c.ID == courseID
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Course not found")
		}
		return Result{}, storagef(err, "Failed to update course file")
	}
	return success("Course removed successfully"), nil
}

// ViewMyCourses lists the caller's courses. Seat usage comes from counting
// live enrollment rows, not the stored counter, so a stale counter never
// shows through here.
func (p *Portal) ViewMyCourses(ctx context.Context, username string) (Result, error) {
	fac, err := p.facultyByUsername(ctx, username)
	if err != nil {
		return Result{}, err
	}

	enrolled := make(map[int32]int32)
	err = p.stores.Enrollments.Scan(ctx, func(e records.Enrollment) bool {
		enrolled[e.CourseID]++
		return true
	})
	if err != nil {
		return Result{}, storagef(err, "Cannot read enrollment file")
	}

	var b strings.Builder
	n := 0
	err = p.stores.Courses.Scan(ctx, func(c records.Course) bool {
		if c.FacultyID != fac.ID {
			return true
		}
		row := fmt.Sprintf("ID: %d, Code: %s, Name: %s, Seats: %d/%d\n",
			c.ID, c.GetCode(), c.GetName(), enrolled[c.ID], c.MaxSeats)
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
		return info("You haven't offered any courses yet"), nil
	}
	return success(fmt.Sprintf("Your courses (%d):\n%s", n, b.String())), nil
}

// ViewCourseEnrollments lists students enrolled in a course, joined against
// the roster. Enrollment rows whose student no longer resolves are skipped.
func (p *Portal) ViewCourseEnrollments(ctx context.Context, courseID int32) (Result, error) {
	var studentIDs []int32
	err := p.stores.Enrollments.Scan(ctx, func(e records.Enrollment) bool {
		if e.CourseID == courseID {
			studentIDs = append(studentIDs, e.StudentID)
		}
		return true
	})
	if err != nil {
		return Result{}, storagef(err, "Cannot read enrollment file")
	}

	wanted := make(map[int32]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}

	var b strings.Builder
	n := 0
	err = p.stores.Students.Scan(ctx, func(s records.Student) bool {
		if !wanted[s.ID] {
			return true
		}
		row := fmt.Sprintf("Student ID: %d, Name: %s, Email: %s\n", s.ID, s.GetName(), s.GetEmail())
		if b.Len()+len(row) >= listingLimit {
			return false
		}
		b.WriteString(row)
		n++
		return true
	})
	if err != nil {
		return Result{}, storagef(err, "Cannot read student file")
	}
	if n == 0 {
		return info(fmt.Sprintf("No enrollments found for course %d", courseID)), nil
	}
	return success(fmt.Sprintf("Total enrollments: %d\n%s", n, b.String())), nil
}
