// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/searchgate/internal/logging"
)

// IdentityMiddlewareConfig holds configuration for the identity middleware.
type IdentityMiddlewareConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// SessionTTL is the session time-to-live.
	SessionTTL time.Duration

	// SlidingSession extends session expiry on each request.
	SlidingSession bool

	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
}

// DefaultIdentityMiddlewareConfig returns the defaults.
func DefaultIdentityMiddlewareConfig() *IdentityMiddlewareConfig {
	return &IdentityMiddlewareConfig{
		CookieName:     "searchgate_session",
		SessionTTL:     24 * time.Hour,
		SlidingSession: true,
		CookiePath:     "/",
		CookieSecure:   true,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// IdentityMiddleware resolves the caller's Identity and stores it in the
// request context.
type IdentityMiddleware struct {
	store  SessionStore
	tokens *JWTManager // nil disables bearer tokens
	config *IdentityMiddlewareConfig
}

// NewIdentityMiddleware creates the middleware. tokens may be nil.
func NewIdentityMiddleware(store SessionStore, tokens *JWTManager, config *IdentityMiddlewareConfig) *IdentityMiddleware {
	if config == nil {
		config = DefaultIdentityMiddlewareConfig()
	}
	return &IdentityMiddleware{
		store:  store,
		tokens: tokens,
		config: config,
	}
}

// Handler attaches the identity, if any, and always calls next.
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := m.Resolve(r); id != nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Resolve returns the identity for the request: session cookie first, then
// bearer token. Returns nil for an anonymous request.
func (m *IdentityMiddleware) Resolve(r *http.Request) *Identity {
	if id := m.fromSession(r.Context(), m.sessionID(r)); id != nil {
		return id
	}
	return m.fromToken(r)
}

func (m *IdentityMiddleware) fromSession(ctx context.Context, sessionID string) *Identity {
	if sessionID == "" {
		return nil
	}

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
			logging.Ctx(ctx).Error().Err(err).Msg("Session lookup error")
		}
		return nil
	}

	if m.config.SlidingSession {
		if err := m.store.Touch(ctx, sessionID, time.Now().Add(m.config.SessionTTL)); err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to touch session")
		}
	}

	return session.Identity()
}

func (m *IdentityMiddleware) fromToken(r *http.Request) *Identity {
	if m.tokens == nil {
		return nil
	}
	raw := extractBearerToken(r)
	if raw == "" {
		return nil
	}

	claims, err := m.tokens.ValidateToken(raw)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Bearer token rejected")
		return nil
	}
	return claims.Identity()
}

// sessionID extracts the session ID from the cookie.
func (m *IdentityMiddleware) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// SetSessionCookie sets the session cookie on the response.
func (m *IdentityMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sessionID,
		Path:     m.config.CookiePath,
		MaxAge:   int(m.config.SessionTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: m.config.CookieHTTPOnly,
		SameSite: m.config.CookieSameSite,
	})
}

// ClearSessionCookie clears the session cookie.
func (m *IdentityMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     m.config.CookiePath,
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: m.config.CookieHTTPOnly,
		SameSite: m.config.CookieSameSite,
	})
}

// CreateSession creates a session for id and sets the cookie. An existing
// session named by oldSessionID is deleted first so a pre-login session ID
// never survives authentication.
func (m *IdentityMiddleware) CreateSession(ctx context.Context, w http.ResponseWriter, id *Identity, oldSessionID string) (*Session, error) {
	if oldSessionID != "" {
		if err := m.store.Delete(ctx, oldSessionID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to delete previous session")
		}
	}

	session, err := NewSession(id, m.config.SessionTTL)
	if err != nil {
		return nil, err
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	m.SetSessionCookie(w, session.ID)
	return session, nil
}

// DestroySession destroys the session and clears the cookie.
func (m *IdentityMiddleware) DestroySession(ctx context.Context, w http.ResponseWriter, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	m.ClearSessionCookie(w)
	return nil
}

// Tokens returns the token manager, or nil when bearer tokens are disabled.
func (m *IdentityMiddleware) Tokens() *JWTManager {
	return m.tokens
}
