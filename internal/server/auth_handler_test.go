package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/types"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

// setupTestAuthHandler builds an AuthHandler on top of an in-memory fake DB.
func setupTestAuthHandler(_ *testing.T) (*AuthHandler, *fakeDB) {
	db := newFakeDB()
	userSvc := NewUserService(db, testPasswordConfig())
	jwtSvc := NewJWTService(&config.JWTConfig{
		Secret:          testJWTSecret,
		Issuer:          "tailorproof",
		ExpirationHours: 24,
	})
	return NewAuthHandler(userSvc, jwtSvc), db
}

func postJSON(t *testing.T, handler func(http.ResponseWriter, *http.Request), target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	w := postJSON(t, handler.Register, "/v1/auth/register", map[string]string{
		"name":     "Jordan Reyes",
		"email":    "jordan@example.com",
		"password": "correct-horse",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "jordan@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	body := map[string]string{
		"name":     "Jordan Reyes",
		"email":    "jordan@example.com",
		"password": "correct-horse",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, handler.Register, "/v1/auth/register", body).Code)

	w := postJSON(t, handler.Register, "/v1/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		reqBody map[string]string
	}{
		{
			name:    "missing name",
			reqBody: map[string]string{"email": "jordan@example.com", "password": "correct-horse"},
		},
		{
			name:    "invalid email",
			reqBody: map[string]string{"name": "Jordan", "email": "not-an-email", "password": "correct-horse"},
		},
		{
			name:    "password too short",
			reqBody: map[string]string{"name": "Jordan", "email": "jordan@example.com", "password": "short"},
		},
		{
			name:    "missing password",
			reqBody: map[string]string{"name": "Jordan", "email": "jordan@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setupTestAuthHandler(t)

			w := postJSON(t, handler.Register, "/v1/auth/register", tt.reqBody)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	registerTestUser(t, handler.userService, "jordan@example.com", "correct-horse")

	w := postJSON(t, handler.Login, "/v1/auth/login", map[string]string{
		"email":    "jordan@example.com",
		"password": "correct-horse",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// The issued token must resolve back to the registered user.
	userID, err := handler.jwtService.UserFromToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	registerTestUser(t, handler.userService, "jordan@example.com", "correct-horse")

	w := postJSON(t, handler.Login, "/v1/auth/login", map[string]string{
		"email":    "jordan@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email or password")
}

func TestAuthHandler_Login_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		reqBody map[string]string
	}{
		{
			name:    "missing email",
			reqBody: map[string]string{"password": "correct-horse"},
		},
		{
			name:    "invalid email format",
			reqBody: map[string]string{"email": "not-an-email", "password": "correct-horse"},
		},
		{
			name:    "missing password",
			reqBody: map[string]string{"email": "jordan@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setupTestAuthHandler(t)

			w := postJSON(t, handler.Login, "/v1/auth/login", tt.reqBody)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	userID := registerTestUser(t, handler.userService, "jordan@example.com", "correct-horse")

	body, _ := json.Marshal(map[string]string{
		"current_password": "correct-horse",
		"new_password":     "battery-staple",
	})
	req := httptest.NewRequest(http.MethodPut, "/v1/auth/password", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.UpdatePassword(w, req, userID)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Password updated successfully")

	login := postJSON(t, handler.Login, "/v1/auth/login", map[string]string{
		"email":    "jordan@example.com",
		"password": "battery-staple",
	})
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestAuthHandler_UpdatePassword_WrongCurrent(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)
	userID := registerTestUser(t, handler.userService, "jordan@example.com", "correct-horse")

	body, _ := json.Marshal(map[string]string{
		"current_password": "not-the-password",
		"new_password":     "battery-staple",
	})
	req := httptest.NewRequest(http.MethodPut, "/v1/auth/password", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.UpdatePassword(w, req, userID)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UpdatePassword_UnknownUser(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	body, _ := json.Marshal(map[string]string{
		"current_password": "anything",
		"new_password":     "battery-staple",
	})
	req := httptest.NewRequest(http.MethodPut, "/v1/auth/password", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.UpdatePassword(w, req, uuid.New())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_UpdatePassword_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		reqBody map[string]string
	}{
		{
			name:    "missing current password",
			reqBody: map[string]string{"new_password": "battery-staple"},
		},
		{
			name:    "missing new password",
			reqBody: map[string]string{"current_password": "correct-horse"},
		},
		{
			name:    "new password too short",
			reqBody: map[string]string{"current_password": "correct-horse", "new_password": "short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setupTestAuthHandler(t)

			body, _ := json.Marshal(tt.reqBody)
			req := httptest.NewRequest(http.MethodPut, "/v1/auth/password", bytes.NewReader(body))
			w := httptest.NewRecorder()
			handler.UpdatePassword(w, req, uuid.New())

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}
