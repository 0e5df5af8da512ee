package repo

import (
	"errors"
	"fmt"
)

var (
	ErrorNotFound           = errors.New("not found")
	ErrorMalformedRecord    = errors.New("malformed record")
	ErrorBackendUnavailable = errors.New("backend unavailable")
)

type NotFoundError struct {
	Op string
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s task %q: %s", e.Op, e.ID, ErrorNotFound)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrorNotFound }

// MalformedRecordError reports the first attribute of a stored item that
// could not be decoded into a Task.
type MalformedRecordError struct {
	Attribute string
	Reason    string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: attribute %q %s", ErrorMalformedRecord, e.Attribute, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrorMalformedRecord }

// BackendError wraps a failure returned by the underlying store.
type BackendError struct {
	Op  string
	ID  string
	Err error
}

func (e *BackendError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s task: %s: %v", e.Op, ErrorBackendUnavailable, e.Err)
	}
	return fmt.Sprintf("%s task %q: %s: %v", e.Op, e.ID, ErrorBackendUnavailable, e.Err)
}

func (e *BackendError) Is(target error) bool { return target == ErrorBackendUnavailable }

func (e *BackendError) Unwrap() error { return e.Err }

func notFound(op, id string) error {
	return &NotFoundError{Op: op, ID: id}
}

func backendErr(op, id string, err error) error {
	return &BackendError{Op: op, ID: id, Err: err}
}
