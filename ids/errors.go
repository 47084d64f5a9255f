package ids

import (
	"errors"
	"net/http"
	"strings"
)

// error kinds.  Every error returned by a Camera wraps exactly one of these.
var (
	// ErrNotFound is returned when no camera matches the selection
	ErrNotFound = errors.New("not found")

	// ErrNotSupported is returned when the camera lacks a capability,
	// such as standby or a binning mode
	ErrNotSupported = errors.New("not supported")

	// ErrInvalidState is returned when an operation is not allowed in the
	// current power state or after Close
	ErrInvalidState = errors.New("invalid state")

	// ErrHardwareRejected is returned when the driver fails an otherwise valid request
	ErrHardwareRejected = errors.New("hardware rejected")

	// ErrInvalidArgument is returned for values outside any negotiable
	// range, or unrecognized encoded modes
	ErrInvalidArgument = errors.New("invalid argument")
)

// finer reasons, wrapped alongside a kind
var (
	// ErrNotInitialized is returned by every method after Close
	ErrNotInitialized = errors.New("device not initialized")

	// ErrStandby is returned by operations which require the camera to be enabled
	ErrStandby = errors.New("hardware operation unavailable")

	// ErrUnsupportedValue is returned by capability table lookups which miss
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrUnrecognizedPixelFormat is returned when the color mode is not in the table
	ErrUnrecognizedPixelFormat = errors.New("unrecognized pixel format")

	// ErrAllocFailed is returned when a frame buffer cannot be allocated
	ErrAllocFailed = errors.New("failed to allocate frame buffer")

	// ErrBindFailed is returned when image memory cannot be bound to or released from the camera
	ErrBindFailed = errors.New("failed to allocate/bind image memory")

	// ErrCaptureFailed is returned when the blocking capture fails
	ErrCaptureFailed = errors.New("failed to acquire image")
)

// Error is the error type returned by Camera
type Error struct {
	// Op is the Camera method that failed
	Op string

	// Kind is one of the Err* kinds
	Kind error

	// Reason is an optional finer reason
	Reason error

	// Detail is a human readable description, including offending values
	Detail string

	// Err is the underlying driver error, if any
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("ids: ")
	b.WriteString(e.Op)
	b.WriteString(": ")
	switch {
	case e.Detail != "":
		b.WriteString(e.Detail)
	case e.Reason != nil:
		b.WriteString(e.Reason.Error())
	default:
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the kind, reason and driver error to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 3)
	for _, err := range []error{e.Kind, e.Reason, e.Err} {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// StatusCode maps the kind to an HTTP status
func (e *Error) StatusCode() int {
	switch e.Kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrNotSupported, ErrInvalidArgument:
		return http.StatusBadRequest
	case ErrInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(op string, kind, reason, err error, detail string) *Error {
	return &Error{Op: op, Kind: kind, Reason: reason, Detail: detail, Err: err}
}
