// Package status defines the error taxonomy shared across the query
// engine, per the error handling design: every cross-component call
// returns a tagged status instead of relying on panics for control flow.
package status

import "fmt"

// Code tags the category of a failure so callers can decide whether to
// skip a pair, cancel a query, or abort the process.
type Code int

const (
	// OK indicates success. The zero value so a missing status reads as ok
	// only when callers explicitly check Err == nil, not by Code alone.
	OK Code = iota
	DiskRead
	DiskWrite
	InvalidParameter
	InvalidGeometry
	InvalidQueryType
	AprilCreate
	AprilUnexpectedResult
	CommSend
	CommRecv
	CommInit
	MallocFailed
	FeatureUnsupported
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case DiskRead:
		return "DiskRead"
	case DiskWrite:
		return "DiskWrite"
	case InvalidParameter:
		return "InvalidParameter"
	case InvalidGeometry:
		return "InvalidGeometry"
	case InvalidQueryType:
		return "InvalidQueryType"
	case AprilCreate:
		return "AprilCreate"
	case AprilUnexpectedResult:
		return "AprilUnexpectedResult"
	case CommSend:
		return "CommSend"
	case CommRecv:
		return "CommRecv"
	case CommInit:
		return "CommInit"
	case MallocFailed:
		return "MallocFailed"
	case FeatureUnsupported:
		return "FeatureUnsupported"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error pairs a Code with the underlying cause. It implements the error
// interface so it composes with fmt.Errorf("%w", ...) and errors.Is/As.
type Error struct {
	Code  Code
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a status error with the given code, formatting like fmt.Errorf.
func New(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Cause: fmt.Errorf(format, args...)}
}

// Wrap attaches a code to an existing error. Returns nil if err is nil.
func Wrap(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Cause: err}
}

// CodeOf extracts the Code from err, returning OK if err is nil and
// InvalidParameter if err is not a *Error (an uncategorized failure is
// treated conservatively as the caller's fault).
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	if se, ok := err.(*Error); ok {
		return se.Code
	}
	return InvalidParameter
}
