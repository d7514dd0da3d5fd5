package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	"github.com/ashokCh-dev/Academia-Portal/pkg/store"
)

// usernameTaken reports whether any credential already uses the name.
// Credentials are the single namespace shared by students and faculty.
func (p *Portal) usernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := p.stores.Credentials.FindFirst(ctx, func(c *records.Credential) bool {
		return c.GetUsername() == username
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, storagef(err, "Failed to check for existing username")
}

// AddStudent creates a student record and its credential. The account starts
// active with the default password. A credential write failure after the
// record committed degrades the result rather than unwinding the record.
func (p *Portal) AddStudent(ctx context.Context, username, name, email string) (Result, error) {
	taken, err := p.usernameTaken(ctx, username)
	if err != nil {
		return Result{}, err
	}
	if taken {
		return Result{}, conflictf("Username already exists. Please choose a different username")
	}

	id, err := p.stores.Students.AppendAllocated(ctx,
		func(s *records.Student) int32 { return s.ID },
		func(id int32) records.Student {
			s := records.NewStudent(username, name, email)
			s.ID = id
			return s
		})
	if err != nil {
		return Result{}, storagef(err, "Failed to write student record")
	}

	if err := p.createCredential(ctx, username, records.RoleStudent); err != nil {
		logger.Error("credential creation failed for student %q (id %d): %v", username, id, err)
		return warning("Student added but failed to create credentials"), nil
	}

	return success(fmt.Sprintf("Student added with ID %d", id)), nil
}

// AddFaculty mirrors AddStudent for faculty accounts.
func (p *Portal) AddFaculty(ctx context.Context, username, name, email, department string) (Result, error) {
	taken, err := p.usernameTaken(ctx, username)
	if err != nil {
		return Result{}, err
	}
	if taken {
		return Result{}, conflictf("Faculty username '%s' already exists", username)
	}

	id, err := p.stores.Faculty.AppendAllocated(ctx,
		func(f *records.Faculty) int32 { return f.ID },
		func(id int32) records.Faculty {
			f := records.NewFaculty(username, name, email, department)
			f.ID = id
			return f
		})
	if err != nil {
		return Result{}, storagef(err, "Failed to write faculty record")
	}

	if err := p.createCredential(ctx, username, records.RoleFaculty); err != nil {
		logger.Error("credential creation failed for faculty %q (id %d): %v", username, id, err)
		return warning("Faculty added but failed to create credentials"), nil
	}

	return success(fmt.Sprintf("Faculty added with ID %d", id)), nil
}

// UpdateStudentStatus activates or deactivates a student account, keyed by
// username. Deactivation blocks future logins but does not touch existing
// enrollments.
func (p *Portal) UpdateStudentStatus(ctx context.Context, username string, active bool) (Result, error) {
	state := int32(0)
	if active {
		state = 1
	}
	err := p.stores.Students.UpdateFirst(ctx,
		func(s *records.Student) bool { return s.GetUsername() == username },
		func(s *records.Student) { s.Active = state })
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Student with username '%s' not found", username)
		}
		return Result{}, storagef(err, "Failed to update student status")
	}
	return success(fmt.Sprintf("Student status updated for %s", username)), nil
}

// StudentField selects which student attribute an update rewrites.
type StudentField int

const (
	StudentName StudentField = iota
	StudentEmail
)

// UpdateStudent rewrites one attribute of the student with the given
// username.
func (p *Portal) UpdateStudent(ctx context.Context, username string, field StudentField, value string) (Result, error) {
	var mutate func(s *records.Student)
	var what string
	switch field {
	case StudentName:
		mutate = func(s *records.Student) { records.SetStr(s.Name[:], value) }
		what = "name"
	case StudentEmail:
		mutate = func(s *records.Student) { records.SetStr(s.Email[:], value) }
		what = "email"
	default:
		return Result{}, parseErrf("Unknown student field")
	}

	err := p.stores.Students.UpdateFirst(ctx,
		func(s *records.Student) bool { return s.GetUsername() == username }, mutate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Student with username '%s' not found", username)
		}
		return Result{}, storagef(err, "Failed to update student %s", what)
	}
	return success(fmt.Sprintf("Student %s updated for %s", what, username)), nil
}

// FacultyField selects which faculty attribute an update rewrites.
type FacultyField int

const (
	FacultyName FacultyField = iota
	FacultyEmail
	FacultyDepartment
)

// UpdateFaculty rewrites one attribute of the faculty member with the given
// username.
func (p *Portal) UpdateFaculty(ctx context.Context, username string, field FacultyField, value string) (Result, error) {
	var mutate func(f *records.Faculty)
	var what string
	switch field {
	case FacultyName:
		mutate = func(f *records.Faculty) { records.SetStr(f.Name[:], value) }
		what = "name"
	case FacultyEmail:
		mutate = func(f *records.Faculty) { records.SetStr(f.Email[:], value) }
		what = "email"
	case FacultyDepartment:
		mutate = func(f *records.Faculty) { records.SetStr(f.Department[:], value) }
		what = "department"
	default:
		return Result{}, parseErrf("Unknown faculty field")
	}

	err := p.stores.Faculty.UpdateFirst(ctx,
		func(f *records.Faculty) bool { return f.GetUsername() == username }, mutate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, notFoundf("Faculty with username '%s' not found", username)
		}
		return Result{}, storagef(err, "Failed to update faculty %s", what)
	}
	return success(fmt.Sprintf("Faculty %s updated for %s", what, username)), nil
}

// ViewStudents renders the full roster as a fixed table. The reply is capped
// at the listing limit; rows past the cap are dropped silently.
func (p *Portal) ViewStudents(ctx context.Context) (Result, error) {
	var b strings.Builder
	b.WriteString("ID | Username | Name | Email | Status\n")
	b.WriteString("----------------------------------------\n")
	n := 0
	err := p.stores.Students.Scan(ctx, func(s records.Student) bool {
		status := "Inactive"
		if s.IsActive() {
			status = "Active"
		}
		row := fmt.Sprintf("%d | %s | %s | %s | %s\n",
			s.ID, s.GetUsername(), s.GetName(), s.GetEmail(), status)
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
		return info("No students found"), nil
	}
	return success(b.String()), nil
}

// ViewFaculty renders all faculty members as a fixed table.
func (p *Portal) ViewFaculty(ctx context.Context) (Result, error) {
	var b strings.Builder
	b.WriteString("ID | Username | Name | Email | Department\n")
	b.WriteString("----------------------------------------\n")
	n := 0
	err := p.stores.Faculty.Scan(ctx, func(f records.Faculty) bool {
		row := fmt.Sprintf("%d | %s | %s | %s | %s\n",
			f.ID, f.GetUsername(), f.GetName(), f.GetEmail(), f.GetDepartment())
		if b.Len()+len(row) >= listingLimit {
			return false
		}
		b.WriteString(row)
		n++
		return true
	})
	if err != nil {
		return Result{}, storagef(err, "Cannot read faculty file")
	}
	if n == 0 {
		return info("No faculty members found"), nil
	}
	return success(b.String()), nil
}
