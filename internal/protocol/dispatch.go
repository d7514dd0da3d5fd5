package protocol

import (
	"context"
	"strconv"

	"github.com/ashokCh-dev/Academia-Portal/internal/portal"
	"github.com/ashokCh-dev/Academia-Portal/pkg/records"
)

// Dispatcher routes parsed commands to the domain operations of an
// authenticated session. AUTH and LOGOUT never reach it; the connection
// handler consumes those before the session is bound to a role.
type Dispatcher struct {
	portal *portal.Portal
}

func NewDispatcher(p *portal.Portal) *Dispatcher {
	return &Dispatcher{portal: p}
}

// Dispatch executes one request line on behalf of an authenticated user and
// returns the response line, without trailing newline.
func (d *Dispatcher) Dispatch(ctx context.Context, role, username, line string) string {
	cmd := ParseCommand(line)

	// Available to every role.
	if cmd.Verb == "CHANGE_PASSWORD" {
		if cmd.Params == "" {
			return "ERROR:Invalid password change format"
		}
		return render(d.portal.ChangePassword(ctx, username, cmd.Params))
	}

	switch role {
	case records.RoleAdmin:
		return d.admin(ctx, cmd)
	case records.RoleFaculty:
		return d.faculty(ctx, username, cmd)
	case records.RoleStudent:
		return d.student(ctx, username, cmd)
	default:
		return "ERROR:Unknown role"
	}
}

func (d *Dispatcher) admin(ctx context.Context, cmd Command) string {
	switch cmd.Verb {
	case "ADD_STUDENT":
		args, ok := fields(cmd.Params, 3)
		if !ok {
			return "ERROR:Invalid parameters for ADD_STUDENT"
		}
		return render(d.portal.AddStudent(ctx, args[0], args[1], args[2]))

	case "ADD_FACULTY":
		args, ok := fields(cmd.Params, 4)
		if !ok {
			return "ERROR:Invalid parameters for ADD_FACULTY"
		}
		return render(d.portal.AddFaculty(ctx, args[0], args[1], args[2], args[3]))

	case "UPDATE_STUDENT_STATUS":
		args, ok := fields(cmd.Params, 2)
		if !ok {
			return "ERROR:Invalid parameters for UPDATE_STUDENT_STATUS"
		}
		status, err := strconv.Atoi(args[1])
		if err != nil {
			return "ERROR:Invalid parameters for UPDATE_STUDENT_STATUS"
		}
		return render(d.portal.UpdateStudentStatus(ctx, args[0], status != 0))

	case "UPDATE_STUDENT_NAME":
		args, ok := fields(cmd.Params, 2)
		if !ok {
			return "ERROR:Invalid parameters for UPDATE_STUDENT_NAME"
		}
		return render(d.portal.UpdateStudent(ctx, args[0], portal.StudentName, args[1]))

	case "UPDATE_STUDENT_EMAIL":
		args, ok := fields(cmd.Params, 2)
		if !ok {
			return "ERROR:Invalid parameters for UPDATE_STUDENT_EMAIL"
		}
		return render(d.portal.UpdateStudent(ctx, args[0], portal.StudentEmail, args[1]))

	case "UPDATE_FACULTY_NAME":
		args, ok := fields(cmd.Params, 2)
		if !ok {
			return "ERROR:Invalid parameters for UPDATE_FACULTY_NAME"
		}
		return render(d.portal.UpdateFaculty(ctx, args[0], portal.FacultyName, args[1]))

	case "UPDATE_FACULTY_EMAIL":
		args, ok := fields(cmd.Params, 2)
		if !ok {
			return "ERROR:Invalid parameters for UPDATE_FACULTY_EMAIL"
		}
		return render(d.portal.UpdateFaculty(ctx, args[0], portal.FacultyEmail, args[1]))

	case "UPDATE_FACULTY_DEPT":
		args, ok := fields(cmd.Params, 2)
		if !ok {
			return "ERROR:Invalid parameters for UPDATE_FACULTY_DEPT"
		}
		return render(d.portal.UpdateFaculty(ctx, args[0], portal.FacultyDepartment, args[1]))

	case "VIEW_STUDENTS":
		return render(d.portal.ViewStudents(ctx))

	case "VIEW_FACULTY":
		return render(d.portal.ViewFaculty(ctx))

	default:
		return "ERROR:Unknown admin command"
	}
}

func (d *Dispatcher) faculty(ctx context.Context, username string, cmd Command) string {
	switch cmd.Verb {
	case "ADD_COURSE":
		args, ok := fields(cmd.Params, 3)
		if !ok {
			return "ERROR:Invalid parameters for ADD_COURSE"
		}
		seats, err := strconv.ParseInt(args[2], 10, 32)
		if err != nil || seats <= 0 {
			return "ERROR:Invalid parameters for ADD_COURSE"
		}
		return render(d.portal.AddCourse(ctx, username, args[0], args[1], int32(seats)))

	case "REMOVE_COURSE":
		id, err := courseID(cmd.Params)
		if err != nil {
			return "ERROR:Invalid course ID"
		}
		return render(d.portal.RemoveCourse(ctx, username, id))

	case "VIEW_ENROLLMENTS":
		id, err := courseID(cmd.Params)
		if err != nil {
			return "ERROR:Invalid course ID"
		}
		return render(d.portal.ViewCourseEnrollments(ctx, id))

	case "VIEW_MY_COURSES":
		return render(d.portal.ViewMyCourses(ctx, username))

	default:
		return "ERROR:Unknown faculty command"
	}
}

func (d *Dispatcher) student(ctx context.Context, username string, cmd Command) string {
	switch cmd.Verb {
	case "ENROLL_COURSE":
		id, err := courseID(cmd.Params)
		if err != nil {
			return "ERROR:Invalid course ID"
		}
		return render(d.portal.Enroll(ctx, username, id))

	case "UNENROLL_COURSE":
		id, err := courseID(cmd.Params)
		if err != nil {
			return "ERROR:Invalid course ID"
		}
		return render(d.portal.Unenroll(ctx, username, id))

	case "VIEW_ENROLLED_COURSES":
		return render(d.portal.ViewEnrolledCourses(ctx, username))

	default:
		return "ERROR:Unknown student command"
	}
}

func courseID(params string) (int32, error) {
	id, err := strconv.ParseInt(params, 10, 32)
	return int32(id), err
}
