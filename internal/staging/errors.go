package staging

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated means no acting principal could be resolved. This is a
// caller-contract violation and always propagates; it is never downgraded to
// an absent-entry response.
var ErrUnauthenticated = errors.New("staging: no authenticated principal")

// ErrEmptyKey means a channel key was blank after trimming.
var ErrEmptyKey = errors.New("staging: channel key must be non-empty")

// BackingStoreError wraps a failure of the persistence medium. The original
// cause is attached; retry policy belongs to the caller.
type BackingStoreError struct {
	Op  string
	Err error
}

func (e *BackingStoreError) Error() string {
	return fmt.Sprintf("staging: backing store %s: %v", e.Op, e.Err)
}

func (e *BackingStoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &BackingStoreError{Op: op, Err: err}
}
