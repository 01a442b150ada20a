// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package auth

import (
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/searchgate/internal/logging"
	"github.com/tomtom215/searchgate/internal/metrics"
	"github.com/tomtom215/searchgate/internal/validation"
)

// maxLoginBodyBytes bounds the login request body.
const maxLoginBodyBytes = 4 << 10

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResponse is returned on successful login. Token fields are empty when
// bearer tokens are disabled.
type LoginResponse struct {
	UserID         string     `json:"user_id"`
	Username       string     `json:"username"`
	Roles          []string   `json:"roles"`
	Locale         string     `json:"locale,omitempty"`
	SessionExpires time.Time  `json:"session_expires_at"`
	Token          string     `json:"token,omitempty"`
	TokenExpires   *time.Time `json:"token_expires_at,omitempty"`
}

// AuthHandlers provides HTTP handlers for login and logout.
type AuthHandlers struct {
	users    *UserDirectory
	identity *IdentityMiddleware
	security *logging.SecurityLogger
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(users *UserDirectory, identity *IdentityMiddleware) *AuthHandlers {
	return &AuthHandlers{
		users:    users,
		identity: identity,
		security: logging.NewSecurityLogger(),
	}
}

// Login authenticates a local user and opens a session.
// POST /auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &validation.APIError{Code: "BAD_REQUEST", Message: "request body must be a JSON object"})
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		for _, fe := range verr.Errors() {
			logging.Ctx(r.Context()).Debug().
				Str("field", fe.Field()).
				Str("tag", fe.Tag()).
				Str("param", fe.Param()).
				Msg("Login request rejected")
		}
		writeJSON(w, http.StatusBadRequest, verr.ToAPIError())
		return
	}

	ip := clientIP(r)
	id, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		metrics.AuthLoginAttempts.WithLabelValues("failure").Inc()
		h.security.LogLoginFailure(req.Username, ip, err.Error())
		writeJSON(w, http.StatusUnauthorized, &validation.APIError{Code: "INVALID_CREDENTIALS", Message: "invalid username or password"})
		return
	}

	var oldSessionID string
	if prev := IdentityFromContext(r.Context()); prev != nil {
		oldSessionID = prev.SessionID
	}

	session, err := h.identity.CreateSession(r.Context(), w, id, oldSessionID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to create session")
		writeJSON(w, http.StatusInternalServerError, &validation.APIError{Code: "INTERNAL_ERROR", Message: "failed to create session"})
		return
	}

	resp := &LoginResponse{
		UserID:         id.UserID,
		Username:       id.Username,
		Roles:          id.Roles,
		Locale:         id.Locale,
		SessionExpires: session.ExpiresAt,
	}

	if tokens := h.identity.Tokens(); tokens != nil {
		token, expires, err := tokens.GenerateToken(id)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue bearer token")
		} else {
			resp.Token = token
			resp.TokenExpires = &expires
		}
	}

	metrics.AuthLoginAttempts.WithLabelValues("success").Inc()
	h.security.LogLoginSuccess(id.UserID, session.ID, ProviderSession, ip)
	writeJSON(w, http.StatusOK, resp)
}

// Logout destroys the current session. Anonymous callers get 200 as well.
// POST /auth/logout
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := IdentityFromContext(r.Context()); id != nil && id.SessionID != "" {
		if err := h.identity.DestroySession(r.Context(), w, id.SessionID); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).
				Str("session_id", logging.SanitizeSessionID(id.SessionID)).
				Msg("Failed to delete session")
		}
		h.security.LogLogout(id.UserID, id.SessionID, clientIP(r))
	} else {
		h.identity.ClearSessionCookie(w)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// UserInfo returns the current identity.
// GET /auth/userinfo
func (h *AuthHandlers) UserInfo(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	if id == nil {
		writeJSON(w, http.StatusUnauthorized, &validation.APIError{Code: "UNAUTHORIZED", Message: "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth response")
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
