package portal

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes a domain error. The dispatcher translates codes to
// wire prefixes; everything except ErrInconsistency renders as ERROR.
type ErrorCode int

const (
	// ErrParse indicates a malformed command payload (missing fields,
	// non-numeric ID).
	ErrParse ErrorCode = iota

	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound

	// ErrConflict indicates a uniqueness violation: duplicate username,
	// duplicate course code, already enrolled.
	ErrConflict

	// ErrAuthorization indicates the caller may not perform the operation,
	// e.g. removing a course they do not own.
	ErrAuthorization

	// ErrCapacity indicates the course has no free seats.
	ErrCapacity

	// ErrStorageIO indicates a record-store open/lock/read/write failure.
	// Always surfaced to the caller; never retried.
	ErrStorageIO

	// ErrInconsistency indicates a secondary update failed after a primary
	// mutation committed. Non-fatal; rendered as WARNING.
	ErrInconsistency
)

// Error is a domain error carrying the user-visible message verbatim.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the ErrorCode from err; unknown errors count as storage
// failures since that is the only non-domain error source in this core.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrStorageIO
}

// MessageOf returns the user-visible message for err.
func MessageOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

func parseErrf(format string, v ...any) error {
	return &Error{Code: ErrParse, Message: fmt.Sprintf(format, v...)}
}

func notFoundf(format string, v ...any) error {
	return &Error{Code: ErrNotFound, Message: fmt.Sprintf(format, v...)}
}

func conflictf(format string, v ...any) error {
	return &Error{Code: ErrConflict, Message: fmt.Sprintf(format, v...)}
}

func authzf(format string, v ...any) error {
	return &Error{Code: ErrAuthorization, Message: fmt.Sprintf(format, v...)}
}

func capacityf(format string, v ...any) error {
	return &Error{Code: ErrCapacity, Message: fmt.Sprintf(format, v...)}
}

func storagef(err error, format string, v ...any) error {
	return &Error{Code: ErrStorageIO, Message: fmt.Sprintf(format, v...), Err: err}
}

func inconsistentf(format string, v ...any) error {
	return &Error{Code: ErrInconsistency, Message: fmt.Sprintf(format, v...)}
}
