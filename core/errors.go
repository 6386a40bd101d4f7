package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a remote resource id does not exist in
	// the backing service, including the second of two delete calls for the
	// same id.
	ErrNotFound = errors.New("remote resource not found")

	// ErrNoAnswer is returned when a run finished but the thread holds no
	// message or no text-type content block to extract an answer from.
	ErrNoAnswer = errors.New("no answer returned")
)

// RemoteError wraps a failed remote operation with the operation name and
// the kind of resource involved for uniform downstream handling.
type RemoteError struct {
	Op   string // Remote operation, e.g. "upload", "create_store", "run"
	Kind string // Resource kind, e.g. "file", "vector_store", "thread"
	Err  error  // Underlying transport or service error
}

func (e *RemoteError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("remote %s [%s]: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As chains.
func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemoteError creates a RemoteError for the given operation and kind.
func NewRemoteError(op, kind string, err error) *RemoteError {
	return &RemoteError{Op: op, Kind: kind, Err: err}
}
