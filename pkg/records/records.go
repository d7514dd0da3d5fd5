// Package records defines the five fixed-layout record kinds persisted by the
// portal and their wire-stable binary encoding.
//
// Every record is a struct of int32/int64 scalars and fixed-size byte arrays.
// Records are serialized with XDR, which gives each kind a constant encoded
// size; the file store depends on that for computing in-place update offsets.
package records

import "bytes"

// Field widths. These bound what the protocol accepts and fix the record
// layout on disk; changing one changes the file format.
const (
	UsernameLen   = 50
	NameLen       = 100
	EmailLen      = 100
	DepartmentLen = 50
	CourseCodeLen = 20
	CourseNameLen = 100
	RoleLen       = 10
	VerifierLen   = 72 // bcrypt hashes are 60 bytes; padded for alignment
)

// Role values stored in Credential.Role.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

type Student struct {
	ID       int32
	Username [UsernameLen]byte
	Name     [NameLen]byte
	Email    [EmailLen]byte
	Active   int32
}

type Faculty struct {
	ID         int32
	Username   [UsernameLen]byte
	Name       [NameLen]byte
	Email      [EmailLen]byte
	Department [DepartmentLen]byte
}

type Course struct {
	ID            int32
	Code          [CourseCodeLen]byte
	Name          [CourseNameLen]byte
	FacultyID     int32
	MaxSeats      int32
	EnrolledCount int32
}

type Enrollment struct {
	ID         int32
	StudentID  int32
	CourseID   int32
	EnrolledAt int64 // Unix seconds
}

type Credential struct {
	Username [UsernameLen]byte
	Verifier [VerifierLen]byte
	Role     [RoleLen]byte
}

// Str decodes a fixed-size field: the bytes up to the first NUL.
func Str(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}

// SetStr copies s into a fixed-size field, truncating if necessary and
// NUL-filling the remainder.
func SetStr(field []byte, s string) {
	n := copy(field, s)
	for i := n; i < len(field); i++ {
		field[i] = 0
	}
}

// Accessors keep the fixed-array plumbing out of the domain layer.

func (s *Student) GetUsername() string { return Str(s.Username[:]) }
func (s *Student) GetName() string     { return Str(s.Name[:]) }
func (s *Student) GetEmail() string    { return Str(s.Email[:]) }
func (s *Student) IsActive() bool      { return s.Active != 0 }

func (f *Faculty) GetUsername() string   { return Str(f.Username[:]) }
func (f *Faculty) GetName() string       { return Str(f.Name[:]) }
func (f *Faculty) GetEmail() string      { return Str(f.Email[:]) }
func (f *Faculty) GetDepartment() string { return Str(f.Department[:]) }

func (c *Course) GetCode() string { return Str(c.Code[:]) }
func (c *Course) GetName() string { return Str(c.Name[:]) }

func (c *Credential) GetUsername() string { return Str(c.Username[:]) }
func (c *Credential) GetVerifier() []byte { return bytes.TrimRight(c.Verifier[:], "\x00") }
func (c *Credential) GetRole() string     { return Str(c.Role[:]) }

// NewStudent builds an active student record; the ID is assigned by the store
// at append time.
func NewStudent(username, name, email string) Student {
	var s Student
	SetStr(s.Username[:], username)
	SetStr(s.Name[:], name)
	SetStr(s.Email[:], email)
	s.Active = 1
	return s
}

func NewFaculty(username, name, email, department string) Faculty {
	var f Faculty
	SetStr(f.Username[:], username)
	SetStr(f.Name[:], name)
	SetStr(f.Email[:], email)
	SetStr(f.Department[:], department)
	return f
}

func NewCourse(code, name string, facultyID, maxSeats int32) Course {
	var c Course
	SetStr(c.Code[:], code)
	SetStr(c.Name[:], name)
	c.FacultyID = facultyID
	c.MaxSeats = maxSeats
	c.EnrolledCount = 0
	return c
}

func NewEnrollment(studentID, courseID int32, enrolledAt int64) Enrollment {
	return Enrollment{StudentID: studentID, CourseID: courseID, EnrolledAt: enrolledAt}
}

func NewCredential(username string, verifier []byte, role string) Credential {
	var c Credential
	SetStr(c.Username[:], username)
	SetStr(c.Verifier[:], string(verifier))
	SetStr(c.Role[:], role)
	return c
}
