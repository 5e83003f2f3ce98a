package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrItemNotFound       = errors.New("menu item not found")
	ErrItemUnavailable    = errors.New("menu item is currently unavailable")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrTerminalStatus     = errors.New("order is already in a terminal status")
	ErrUnknownStatus      = errors.New("status is not part of this order's lifecycle")
	ErrBackwardTransition = errors.New("status update moves the order backwards")
)

// ValidationError reports incomplete or invalid checkout input for the
// active order mode. Nothing is mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError wraps a storage failure. The cart logs these and keeps
// its in-memory state; they never reach callers of a mutation.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// RepositoryError wraps a failure of the order repository.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
