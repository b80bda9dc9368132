package report

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by MarkCompleted/MarkFailed when the id does
	// not exist. Get does not use it: absence there is a nil record.
	ErrNotFound = errors.New("report not found")

	// ErrConflict is returned when a Mark operation targets a record that
	// already reached a terminal status.
	ErrConflict = errors.New("report already finalized")
)

// StorageError wraps a backend-level failure (connectivity, constraint,
// serialization) with the contract operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s report: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WrapStorage tags err as a backend failure for op. Contract errors
// (ErrNotFound, ErrConflict) pass through untouched so errors.Is keeps
// working on them.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
