package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the named business is absent from the backing store.
var ErrNotFound = errors.New("business not found")

// ConnectivityError indicates the backing store could not be reached or
// failed at the transport level. Callers keep serving the previous snapshot
// when one occurs; nothing retries automatically.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: store unreachable: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ValidationError indicates a rejected field in an incoming payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
