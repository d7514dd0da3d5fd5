package protocol

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ashokCh-dev/Academia-Portal/internal/portal"
	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
	filestore "github.com/ashokCh-dev/Academia-Portal/pkg/store/file"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	dir := t.TempDir()
	stores := portal.Stores{
		Students:    filestore.New[records.Student](filepath.Join(dir, "students.dat"), 0o644),
		Faculty:     filestore.New[records.Faculty](filepath.Join(dir, "faculty.dat"), 0o644),
		Courses:     filestore.New[records.Course](filepath.Join(dir, "courses.dat"), 0o644),
		Enrollments: filestore.New[records.Enrollment](filepath.Join(dir, "enrollments.dat"), 0o644),
		Credentials: filestore.New[records.Credential](filepath.Join(dir, "credentials.dat"), 0o600),
	}
	return NewDispatcher(portal.New(stores, portal.WithBcryptCost(bcrypt.MinCost)))
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line   string
		verb   string
		params string
	}{
		{"LOGOUT", "LOGOUT", ""},
		{"ADD_STUDENT:bob:Bob B:bob@x.com", "ADD_STUDENT", "bob:Bob B:bob@x.com"},
		{"ENROLL_COURSE:7", "ENROLL_COURSE", "7"},
		{"VIEW_STUDENTS", "VIEW_STUDENTS", ""},
		{":weird", "", "weird"},
	}
	for _, tt := range tests {
		cmd := ParseCommand(tt.line)
		if cmd.Verb != tt.verb || cmd.Params != tt.params {
			t.Errorf("ParseCommand(%q) = %+v, want verb %q params %q", tt.line, cmd, tt.verb, tt.params)
		}
	}
}

func TestDispatchAdminFlow(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	resp := d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_STUDENT:alice:Alice A:alice@x.com")
	if resp != "SUCCESS:Student added with ID 1" {
		t.Fatalf("add student: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_STUDENT:alice:Alice B:alice2@x.com")
	if resp != "ERROR:Username already exists. Please choose a different username" {
		t.Fatalf("duplicate add: %q", resp)
	}

	// The failed add must not burn an id.
	resp = d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_STUDENT:bob:Bob B:bob@x.com")
	if resp != "SUCCESS:Student added with ID 2" {
		t.Fatalf("second add: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_STUDENT:incomplete")
	if resp != "ERROR:Invalid parameters for ADD_STUDENT" {
		t.Fatalf("malformed add: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleAdmin, "admin", "UPDATE_STUDENT_STATUS:alice:0")
	if resp != "SUCCESS:Student status updated for alice" {
		t.Fatalf("status update: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleAdmin, "admin", "FROBNICATE")
	if resp != "ERROR:Unknown admin command" {
		t.Fatalf("unknown verb: %q", resp)
	}
}

func TestDispatchRoleScoping(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	// Admin verbs are invisible to students, not merely forbidden.
	resp := d.Dispatch(ctx, records.RoleStudent, "alice", "ADD_STUDENT:x:Y:z@x.com")
	if resp != "ERROR:Unknown student command" {
		t.Fatalf("role leak: %q", resp)
	}
	resp = d.Dispatch(ctx, records.RoleFaculty, "prof", "ENROLL_COURSE:1")
	if resp != "ERROR:Unknown faculty command" {
		t.Fatalf("role leak: %q", resp)
	}
}

func TestDispatchStudentFlow(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_STUDENT:alice:Alice A:alice@x.com")
	d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_FACULTY:prof:Prof X:x@x.com:CS")
	resp := d.Dispatch(ctx, records.RoleFaculty, "prof", "ADD_COURSE:CS101:Intro to CS:1")
	if resp != "SUCCESS:Course added with ID 1" {
		t.Fatalf("add course: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleStudent, "alice", "ENROLL_COURSE:1")
	if resp != "SUCCESS:Enrolled in course CS101 (Intro to CS)" {
		t.Fatalf("enroll: %q", resp)
	}

	d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_STUDENT:bob:Bob B:bob@x.com")
	resp = d.Dispatch(ctx, records.RoleStudent, "bob", "ENROLL_COURSE:1")
	if resp != "ERROR:Course is full" {
		t.Fatalf("full course: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleStudent, "alice", "ENROLL_COURSE:zap")
	if resp != "ERROR:Invalid course ID" {
		t.Fatalf("bad id: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleStudent, "alice", "VIEW_ENROLLED_COURSES")
	if !strings.HasPrefix(resp, "SUCCESS:Enrolled Courses:\n") || !strings.Contains(resp, "CS101") {
		t.Fatalf("view enrolled: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleStudent, "alice", "UNENROLL_COURSE:1")
	if resp != "SUCCESS:Unenrolled from course CS101" {
		t.Fatalf("unenroll: %q", resp)
	}
	resp = d.Dispatch(ctx, records.RoleStudent, "alice", "UNENROLL_COURSE:1")
	if resp != "ERROR:Not enrolled in this course" {
		t.Fatalf("double unenroll: %q", resp)
	}
}

func TestDispatchChangePassword(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	d.Dispatch(ctx, records.RoleAdmin, "admin", "ADD_STUDENT:alice:Alice A:alice@x.com")

	resp := d.Dispatch(ctx, records.RoleStudent, "alice", "CHANGE_PASSWORD:newpass")
	if resp != "SUCCESS:Password changed successfully" {
		t.Fatalf("change password: %q", resp)
	}

	resp = d.Dispatch(ctx, records.RoleStudent, "alice", "CHANGE_PASSWORD")
	if resp != "ERROR:Invalid password change format" {
		t.Fatalf("empty password: %q", resp)
	}
}
