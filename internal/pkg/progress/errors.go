package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is returned by mutations attempted without a user.
	ErrAuthRequired = errors.New("authentication required")
	// ErrUnknownPhase is returned when a phase id is not in the catalog.
	ErrUnknownPhase = errors.New("unknown phase")
	// ErrPersistence matches every *PersistenceError via errors.Is.
	ErrPersistence = errors.New("persistence error")
	// ErrInvalidProgressData is returned when the payload cannot be encoded as JSON.
	ErrInvalidProgressData = errors.New("invalid progress data")
)

// PersistenceError wraps a repository failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
