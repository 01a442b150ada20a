// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package auth

import (
	"context"
	"net/http"
)

// Identity providers
const (
	ProviderSession = "session"
	ProviderJWT     = "jwt"
)

// Identity is an authenticated principal.
type Identity struct {
	// UserID is the stable user identifier. Casbin subjects use it.
	UserID string `json:"user_id"`

	Username string   `json:"username"`
	Roles    []string `json:"roles"`

	// Locale is the user's preferred locale, empty when unset.
	Locale string `json:"locale,omitempty"`

	// Provider is how the identity was established: "session" or "jwt".
	Provider string `json:"provider"`

	// SessionID is set when the identity came from a session.
	SessionID string `json:"-"`
}

// HasRole checks if the identity has a specific role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type identityContextKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity in ctx, or nil when the request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// CurrentIdentity returns the identity attached to the request, or nil.
func CurrentIdentity(r *http.Request) *Identity {
	return IdentityFromContext(r.Context())
}
