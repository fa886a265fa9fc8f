package service

import (
	"errors"
	"fmt"
)

// Errors returned by the service layer. Details are attached by wrapping;
// test with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrOutOfRange    = errors.New("out of range")
	ErrQuotaExceeded = errors.New("daily order limit reached")
	ErrEmptyOrder    = errors.New("order has no valid line items")
	ErrPersistence   = errors.New("persistence failed")
	ErrUnauthorized  = errors.New("invalid email or password")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
