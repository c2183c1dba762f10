package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/cv-importer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     "Jan Kowalski",
		"email":    "Jan@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[types.LoginResponse](t, w)
	require.NotNil(t, resp.User)
	assert.Equal(t, "jan@example.com", resp.User.Email, "email is normalized")
	assert.True(t, resp.User.PasswordSet)
	assert.NotContains(t, w.Body.String(), "password_hash")

	claims, err := env.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "taken@example.com")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantErr    string
	}{
		{"invalid json", "{not json", http.StatusBadRequest, "invalid request body"},
		{"empty body", "", http.StatusBadRequest, "empty"},
		{"unknown field", `{"name":"a","email":"a@example.com","password":"password123","admin":true}`, http.StatusBadRequest, "unknown field"},
		{"missing name", map[string]string{"email": "a@example.com", "password": "password123"}, http.StatusBadRequest, "name - required"},
		{"invalid email", map[string]string{"name": "A", "email": "nope", "password": "password123"}, http.StatusBadRequest, "email - email"},
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "short"}, http.StatusBadRequest, "password - min"},
		{"password without digit", map[string]string{"name": "A", "email": "a@example.com", "password": "onlyletters"}, http.StatusBadRequest, "letter and a digit"},
		{"duplicate email", map[string]string{"name": "A", "email": "TAKEN@example.com", "password": "password123"}, http.StatusConflict, "already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, errorMessage(t, w), tt.wantErr)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.register(t, "jan@example.com")

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"valid credentials", "jan@example.com", "password123", http.StatusOK},
		{"email case ignored", " JAN@example.com ", "password123", http.StatusOK},
		{"wrong password", "jan@example.com", "password124", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", "password123", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
				"email":    strings.TrimSpace(tt.email),
				"password": tt.password,
			})
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "invalid email or password", errorMessage(t, w))
				return
			}
			resp := decodeBody[types.LoginResponse](t, w)
			assert.Equal(t, userID, resp.User.ID)
			assert.NotEmpty(t, resp.Token)
		})
	}
}

func TestAuthHandler_Login_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "jan@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "password - required")
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "jan@example.com")

	tests := []struct {
		name       string
		token      string
		body       map[string]string
		wantStatus int
	}{
		{"no token", "", map[string]string{"current_password": "password123", "new_password": "newpassword1"}, http.StatusUnauthorized},
		{"wrong current", token, map[string]string{"current_password": "password999", "new_password": "newpassword1"}, http.StatusUnauthorized},
		{"same password", token, map[string]string{"current_password": "password123", "new_password": "password123"}, http.StatusBadRequest},
		{"weak new password", token, map[string]string{"current_password": "password123", "new_password": "12345678"}, http.StatusBadRequest},
		{"valid", token, map[string]string{"current_password": "password123", "new_password": "newpassword1"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPut, "/auth/password", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	// the new password works, the old one does not
	w := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "jan@example.com", "password": "newpassword1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "jan@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UpdatePassword_MissingUserID(t *testing.T) {
	env := newTestEnv(t)

	// called without the auth middleware
	req := httptest.NewRequest(http.MethodPut, "/auth/password", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	env.server.authHandler.UpdatePassword(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExtractValidationErrors(t *testing.T) {
	assert.Equal(t, "validation error: invalid request", extractValidationErrors(assert.AnError))

	err := requestValidator.Struct(ParseRequest{})
	assert.Equal(t, "validation error: Text - required", extractValidationErrors(err))
}
