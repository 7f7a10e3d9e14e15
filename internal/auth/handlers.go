package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	service *Service
	log     zerolog.Logger
}

func NewAuthHandler(service *Service, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With().Str("component", "auth").Logger(),
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Login serves POST /admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	token, err := h.service.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrLoginDisabled):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidCredentials):
			h.log.Warn().Str("remote", r.RemoteAddr).Msg("failed admin login")
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			h.log.Error().Err(err).Msg("admin login failed")
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	resp := struct {
		Token string `json:"token"`
	}{Token: token}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RequireAdmin rejects requests without a valid bearer token. It passes
// everything through when no secret is configured.
func (h *AuthHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.service.Enabled() {
			next(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := h.service.ValidateToken(token); err != nil {
			h.log.Debug().Err(err).Msg("rejected admin token")
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}
