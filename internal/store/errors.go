package store

import (
	"errors"
	"fmt"
)

// Failure classes shared by every backend. Callers match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict reports a concurrent write that invalidated a transaction.
	// The operation may succeed if retried.
	ErrConflict = errors.New("transaction conflict")
	// ErrUnavailable wraps I/O and driver failures.
	ErrUnavailable = errors.New("store unavailable")
)

var (
	// ErrUserNotFound is returned when a user cannot be found by id, username or federated id.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrUsernameTaken is returned when creating a user whose normalized username is in use.
	ErrUsernameTaken = fmt.Errorf("username %w", ErrAlreadyExists)
	// ErrFederatedIDTaken is returned when creating a user whose federated id is in use.
	ErrFederatedIDTaken = fmt.Errorf("federated identity %w", ErrAlreadyExists)
	// ErrNoteNotFound is returned when a note does not exist or is not owned by the caller.
	ErrNoteNotFound = fmt.Errorf("note %w", ErrNotFound)
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// IndexConflictError reports which unique index rejected a write.
type IndexConflictError struct {
	Index string
}

func (e *IndexConflictError) Error() string {
	return fmt.Sprintf("index %s conflict", e.Index)
}

// Unwrap makes the error match ErrAlreadyExists.
func (e *IndexConflictError) Unwrap() error { return ErrAlreadyExists }

// Unavailable wraps a backend failure so it matches ErrUnavailable while
// keeping the cause reachable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
