// Package common defines shared constants and sentinel errors used across
// stockkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation error")

	// Inventory errors.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InvalidInputError is a validation failure with a message safe to show to
// the caller. It matches ErrValidation under errors.Is.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func (e *InvalidInputError) Is(target error) bool { return target == ErrValidation }

// Invalid returns an InvalidInputError carrying msg.
func Invalid(msg string) error {
	return &InvalidInputError{Msg: msg}
}
