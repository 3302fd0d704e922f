package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a delete-by-key that matched nothing.
	ErrNotFound = errors.New("not found")
)

// StoreError wraps any connectivity or query failure. Its detail is for
// logs only; callers report a generic message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
