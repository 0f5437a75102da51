package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound indicates a missing application, job or child record
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates an illegal field value or an illegal state transition
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrConflict indicates a duplicate record or a lost concurrent update
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("conflict: %s", e.Message)
}

// ErrForbidden indicates the caller may not act on the resource
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Message)
}

// ErrEmailAlreadyExists indicates a registration for an email that is taken
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return "email already registered: " + e.Email
}

// ErrInvalidCredentials covers both an unknown email and a wrong password
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string { return "invalid email or password" }

// ErrPasswordMismatch indicates the current password given on a change was wrong
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string { return "current password is incorrect" }

// ErrUserNotFound indicates an authenticated user whose account no longer exists
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// NotFound is a shorthand for building an ErrNotFound.
func NotFound(resource string, id uuid.UUID) error {
	return &ErrNotFound{Resource: resource, ID: id}
}

// Invalid is a shorthand for building an ErrValidation.
func Invalid(field, message string) error {
	return &ErrValidation{Field: field, Message: message}
}
