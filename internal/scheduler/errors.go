package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrRunInProgress indicates a reconciliation run is already active;
	// overlapping triggers are rejected, never interleaved.
	ErrRunInProgress = errors.New("reconciliation run already in progress")

	// ErrWeekAlreadyReconciled rejects a manual trigger for a week that
	// already has a run record, before any I/O happens.
	ErrWeekAlreadyReconciled = errors.New("week already reconciled")
)

// LibraryError marks a library service call that failed at a point fatal
// to the run, such as the initial snapshot fetch.
type LibraryError struct {
	Step string
	Err  error
}

func (e *LibraryError) Error() string {
	return fmt.Sprintf("library %s: %v", e.Step, e.Err)
}

func (e *LibraryError) Unwrap() error { return e.Err }

// PersistenceError marks a history write failure. The run result is still
// returned to the caller.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist run record: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
