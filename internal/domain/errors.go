package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAuthRequired      = errors.New("authentication required")
	ErrSoldOut           = errors.New("no seats available on this flight")
	ErrAlreadyPaid       = errors.New("booking is already paid")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrSeatTaken         = errors.New("seat is already taken")
	ErrPaymentDeclined   = errors.New("payment was declined")
	ErrPaymentInProgress = errors.New("payment for this booking is already in progress")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// StoreError wraps a failure of the backing data store (network, timeout,
// server error). Read-only operations may retry it; mutations must not.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsStoreError(err error) bool {
	var s *StoreError
	return errors.As(err, &s)
}
