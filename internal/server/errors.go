// Package server provides the HTTP REST API of the hiring pipeline.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// HTTPStatus maps err, possibly wrapped, to a response status. Anything
// unrecognised is a 500.
func HTTPStatus(err error) int {
	switch {
	case isA[*types.ErrValidation](err):
		return http.StatusBadRequest
	case isA[*types.ErrInvalidCredentials](err), isA[*types.ErrPasswordMismatch](err):
		return http.StatusUnauthorized
	case isA[*types.ErrForbidden](err):
		return http.StatusForbidden
	case isA[*types.ErrNotFound](err), isA[*types.ErrUserNotFound](err):
		return http.StatusNotFound
	case isA[*types.ErrConflict](err), isA[*types.ErrEmailAlreadyExists](err):
		return http.StatusConflict
	case isA[*http.MaxBytesError](err):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func isA[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// publicMessage is the error text safe to return to clients.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
