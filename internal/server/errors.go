// Package server provides the HTTP REST API for LinkedIn profile imports.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/importer"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Wrapped errors are matched by the first typed error in the chain.
func HTTPStatus(err error) int {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *ErrEmailAlreadyExists, *importer.ErrImportApplied:
			return http.StatusConflict
		case *ErrInvalidCredentials, *ErrPasswordMismatch:
			return http.StatusUnauthorized
		case *ErrUserNotFound, *importer.ErrImportNotFound:
			return http.StatusNotFound
		case *ErrValidation, *importer.ErrNothingSelected, *importer.ErrInvalidSelection:
			return http.StatusBadRequest
		case *importer.ErrEmptyParse:
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
