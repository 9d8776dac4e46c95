package tasks

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned when a response arrives for a source or
	// session that is no longer active. The response is not applied.
	ErrSuperseded = errors.New("response superseded")

	// ErrNoSession is returned by edit operations while no task is being edited.
	ErrNoSession = errors.New("no edit session")
)

// FetchError reports a transport failure or non-success response from the
// remote source of a task operation.
type FetchError struct {
	Op     string
	Source Source
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s tasks from %s: %v", e.Op, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError reports an operation on an id absent from the local collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}

// InvalidFieldError reports an edit of a field that is not editable.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid task field %q", e.Field)
}
