package rewind

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by History, Cell and Sequence operations.
var (
	// ErrBusyHistory is returned when an operation that requires no
	// command in progress is attempted while one is already open, or
	// when begin_command is attempted while the calling goroutine
	// already has an ambient history with a command in progress.
	ErrBusyHistory = errors.New("rewind: history is busy")

	// ErrNoCurrentCommand is returned by EndCommand/CancelCommand when
	// no command is currently in progress.
	ErrNoCurrentCommand = errors.New("rewind: no current command")

	// ErrNothingToUndo is returned by Undo when the cursor is already
	// at the beginning of the history.
	ErrNothingToUndo = errors.New("rewind: nothing to undo")

	// ErrNothingToRedo is returned by Redo when the cursor is already
	// at the end of the history.
	ErrNothingToRedo = errors.New("rewind: nothing to redo")

	// ErrReadOnly is returned by Sequence mutators when the sequence
	// was constructed read-only.
	ErrReadOnly = errors.New("rewind: sequence is read-only")

	// ErrOutOfRange is returned when an index argument falls outside a
	// Sequence's valid range.
	ErrOutOfRange = errors.New("rewind: index out of range")
)

// ObserverError wraps a failure raised by a notification observer.
// The engine's contract is to restore mutated state to its pre-mutation
// value before returning an ObserverError, so callers always see a
// consistent history regardless of whether an observer failed.
type ObserverError struct {
	// Op names the operation during which the observer failed, e.g.
	// "command-executed" or "cell-value-changed".
	Op string
	Err error
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("rewind: observer failed during %s: %v", e.Op, e.Err)
}

func (e *ObserverError) Unwrap() error { return e.Err }

// newObserverError wraps err as an ObserverError for operation op. It
// returns nil if err is nil, so callers can write
// `return newObserverError(op, notify(...))` unconditionally.
func newObserverError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ObserverError{Op: op, Err: err}
}
