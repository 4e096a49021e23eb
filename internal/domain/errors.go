package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Service boundaries catch these and convert them to the
// {success:false, error} envelope; only programming errors pass through raw.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicate         = errors.New("duplicate record")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrLockContention    = errors.New("remote store is locked")
	ErrNotFound          = errors.New("record not found")
)

// ValidationError carries a user-facing message about a malformed candidate.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DuplicateError reports a natural-key collision, carrying the colliding
// record's identity so the caller can point the operator at it.
type DuplicateError struct {
	Key        NaturalKey
	ExistingID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("record with key %q already exists (id=%s)", e.Key, e.ExistingID)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// LockContentionError marks the remote store's advisory lock as held. The
// condition is transient; the operator retries, the service never does.
type LockContentionError struct {
	Detail string
}

func (e *LockContentionError) Error() string {
	if e.Detail == "" {
		return "save lock is held by another writer"
	}
	return e.Detail
}

func (e *LockContentionError) Unwrap() error { return ErrLockContention }
