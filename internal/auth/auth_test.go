package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krishanu7/scribble-backend/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, secret, password string) *Service {
	t.Helper()
	cfg := config.Config{JWTSecret: secret}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.AdminPasswordHash = string(hash)
	}
	return NewService(cfg)
}

func TestLogin(t *testing.T) {
	s := newTestService(t, "s3cret", "hunter2")

	token, err := s.Login("hunter2")
	require.NoError(t, err)
	assert.NoError(t, s.ValidateToken(token))

	_, err = s.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Disabled(t *testing.T) {
	_, err := newTestService(t, "", "hunter2").Login("hunter2")
	assert.ErrorIs(t, err, ErrLoginDisabled)

	_, err = newTestService(t, "s3cret", "").Login("")
	assert.ErrorIs(t, err, ErrLoginDisabled)
}

func TestValidateToken(t *testing.T) {
	s := newTestService(t, "s3cret", "hunter2")
	token, err := s.Login("hunter2")
	require.NoError(t, err)

	other := newTestService(t, "different", "hunter2")
	assert.ErrorIs(t, other.ValidateToken(token), ErrInvalidToken)

	s.now = func() time.Time { return time.Now().Add(13 * time.Hour) }
	assert.ErrorIs(t, s.ValidateToken(token), ErrInvalidToken)

	assert.ErrorIs(t, s.ValidateToken("garbage"), ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "player",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := forged.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	s.now = time.Now
	assert.ErrorIs(t, s.ValidateToken(signed), ErrInvalidToken)
}

func TestLoginHandler(t *testing.T) {
	h := NewAuthHandler(newTestService(t, "s3cret", "hunter2"), zerolog.Nop())

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"password":"hunter2"}`, http.StatusOK},
		{"wrong password", `{"password":"nope"}`, http.StatusUnauthorized},
		{"bad body", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"token"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }

	open := NewAuthHandler(newTestService(t, "", ""), zerolog.Nop())
	rec := httptest.NewRecorder()
	open.RequireAdmin(ok)(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	s := newTestService(t, "s3cret", "hunter2")
	guarded := NewAuthHandler(s, zerolog.Nop()).RequireAdmin(ok)
	token, err := s.Login("hunter2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusTeapot},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			guarded(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
