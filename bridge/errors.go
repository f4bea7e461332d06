package bridge

import (
	"errors"
	"fmt"

	"github.com/xhd2015/dte-mcp/host/common"
)

// Matched through errors.Is by AttachError and ReadError
var (
	ErrNotFound        = errors.New("host not found")
	ErrHostUnavailable = errors.New("host unavailable")
	ErrSessionDead     = errors.New("session dead")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrMalformed       = errors.New("malformed breakpoint")
	ErrReadFailed      = errors.New("read failed")
)

// AttachErrorKind classifies an attach failure
type AttachErrorKind int

const (
	// NotFound means no running host is registered under the program id
	NotFound AttachErrorKind = iota
	// HostUnavailable means a host was found but automation calls fail
	HostUnavailable
)

// String returns a string representation of the kind
func (k AttachErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case HostUnavailable:
		return "host unavailable"
	default:
		return "unknown"
	}
}

// AttachError is returned by Attach
type AttachError struct {
	Kind      AttachErrorKind
	ProgramID string
	Err       error
}

func (e *AttachError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("attach %q: %s", e.ProgramID, e.Kind)
	}
	return fmt.Sprintf("attach %q: %s: %v", e.ProgramID, e.Kind, e.Err)
}

func (e *AttachError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotFound and ErrHostUnavailable by kind
func (e *AttachError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrHostUnavailable:
		return e.Kind == HostUnavailable
	}
	return false
}

// ReadErrorKind classifies a read failure
type ReadErrorKind int

const (
	// SessionDead means the host terminated or detached after attach.
	// A new Attach is required.
	SessionDead ReadErrorKind = iota
	// IndexOutOfRange means the index had no element at call time.
	// Callers should skip the index.
	IndexOutOfRange
	// Malformed means the host reported a file without a usable line
	Malformed
	// Failed covers host errors that prove neither of the above, e.g. a busy host
	Failed
)

// String returns a string representation of the kind
func (k ReadErrorKind) String() string {
	switch k {
	case SessionDead:
		return "session dead"
	case IndexOutOfRange:
		return "index out of range"
	case Malformed:
		return "malformed breakpoint"
	case Failed:
		return "read failed"
	default:
		return "unknown"
	}
}

// ReadError is returned by Enumerate and ResolveAt.
// Index is -1 for failures not tied to an element.
type ReadError struct {
	Kind  ReadErrorKind
	Index int
	Err   error
}

func (e *ReadError) Error() string {
	msg := e.Kind.String()
	if e.Index >= 0 {
		msg = fmt.Sprintf("breakpoint %d: %s", e.Index, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is matches the read sentinels by kind
func (e *ReadError) Is(target error) bool {
	switch target {
	case ErrSessionDead:
		return e.Kind == SessionDead
	case ErrIndexOutOfRange:
		return e.Kind == IndexOutOfRange
	case ErrMalformed:
		return e.Kind == Malformed
	case ErrReadFailed:
		return e.Kind == Failed
	}
	return false
}

func attachError(programID string, err error) *AttachError {
	kind := HostUnavailable
	if errors.Is(err, common.ErrNotRegistered) {
		kind = NotFound
	}
	return &AttachError{Kind: kind, ProgramID: programID, Err: err}
}

// readError maps a backend failure onto the read taxonomy
func readError(index int, err error) *ReadError {
	kind := Failed
	switch {
	case errors.Is(err, common.ErrDisconnected):
		kind = SessionDead
	case errors.Is(err, common.ErrNoSuchItem):
		kind = IndexOutOfRange
	}
	return &ReadError{Kind: kind, Index: index, Err: err}
}
