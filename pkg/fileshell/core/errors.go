package core

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind classifies a failure so the shell boundary can decide how much of it
// to show the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindPermissionDenied
	KindAlreadyExists
	KindIsDirectory
	KindNotDirectory
	KindSamePath
	KindCodec
	KindIO
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindAlreadyExists:
		return "already exists"
	case KindIsDirectory:
		return "is a directory"
	case KindNotDirectory:
		return "not a directory"
	case KindSamePath:
		return "source and destination are the same"
	case KindCodec:
		return "codec error"
	case KindIO:
		return "i/o error"
	default:
		return "unknown"
	}
}

// Error provides context about a failed command.
type Error struct {
	Kind Kind   // Failure classification
	Op   string // Command or step name (e.g. "cp", "copy")
	Path string // Primary path being operated on, may be empty
	Err  error  // Underlying error
}

// Error returns a formatted error message
func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += fmt.Sprintf(" '%s'", e.Path)
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error. When kind is KindUnknown the kind is derived
// from err.
func NewError(kind Kind, op, path string, err error) *Error {
	if kind == KindUnknown {
		kind = KindOf(err)
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// InvalidInput is a shorthand for user input that cannot be dispatched.
func InvalidInput(op, reason string) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: errors.New(reason)}
}

// KindOf reports the Kind of err. A wrapped *Error wins; otherwise the
// well-known filesystem sentinels are inspected.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnknown {
		return e.Kind
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, syscall.EISDIR):
		return KindIsDirectory
	case errors.Is(err, syscall.ENOTDIR):
		return KindNotDirectory
	}
	return KindIO
}
