package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/importer"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	userID := uuid.New()

	assert.Equal(t, "email already registered: test@example.com", (&ErrEmailAlreadyExists{Email: "test@example.com"}).Error())
	assert.Equal(t, "invalid email or password", (&ErrInvalidCredentials{}).Error())
	assert.Equal(t, "user not found: "+userID.String(), (&ErrUserNotFound{UserID: userID}).Error())
	assert.Equal(t, "current password is incorrect", (&ErrPasswordMismatch{}).Error())
	assert.Equal(t, "validation error: email - invalid format", (&ErrValidation{Field: "email", Message: "invalid format"}).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"ErrEmailAlreadyExists", &ErrEmailAlreadyExists{Email: "test@example.com"}, http.StatusConflict},
		{"ErrInvalidCredentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"ErrPasswordMismatch", &ErrPasswordMismatch{}, http.StatusUnauthorized},
		{"ErrUserNotFound", &ErrUserNotFound{UserID: uuid.New()}, http.StatusNotFound},
		{"ErrValidation", &ErrValidation{Field: "password", Message: "too short"}, http.StatusBadRequest},
		{"ErrEmptyParse", &importer.ErrEmptyParse{}, http.StatusUnprocessableEntity},
		{"ErrImportNotFound", &importer.ErrImportNotFound{ImportID: uuid.New()}, http.StatusNotFound},
		{"ErrImportApplied", &importer.ErrImportApplied{ImportID: uuid.New()}, http.StatusConflict},
		{"ErrNothingSelected", &importer.ErrNothingSelected{}, http.StatusBadRequest},
		{"ErrInvalidSelection", &importer.ErrInvalidSelection{Part: "hobbies"}, http.StatusBadRequest},
		{"wrapped typed error", fmt.Errorf("apply: %w", &importer.ErrImportApplied{}), http.StatusConflict},
		{"Unknown error", assert.AnError, http.StatusInternalServerError},
		{"Nil error", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
