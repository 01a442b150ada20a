// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/searchgate/internal/config"
)

func TestNewJWTManager_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTManager(&config.SecurityConfig{})
	if !errors.Is(err, ErrTokensDisabled) {
		t.Errorf("NewJWTManager() error = %v, want %v", err, ErrTokensDisabled)
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t, time.Hour)

	token, expires, err := m.GenerateToken(&Identity{UserID: "alice", Username: "alice", Roles: []string{"searcher"}, Locale: "nl"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expires) <= 59*time.Minute {
		t.Errorf("expires = %v, want about one hour from now", expires)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	id := claims.Identity()
	if id.UserID != "alice" || id.Provider != ProviderJWT || id.Locale != "nl" || !id.HasRole("searcher") {
		t.Errorf("Identity() = %+v", id)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t, time.Hour)

	expired := newTestJWTManager(t, -time.Minute)
	expiredToken, _, _ := expired.GenerateToken(&Identity{UserID: "alice"})

	other, _ := NewJWTManager(&config.SecurityConfig{JWTSecret: "another-secret-that-is-32-bytes-or-more", TokenTTL: time.Hour})
	foreignToken, _, _ := other.GenerateToken(&Identity{UserID: "alice"})

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, Subject: "alice"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"expired":      expiredToken,
		"wrong secret": foreignToken,
		"alg none":     noneToken,
		"garbage":      "not.a.token",
		"empty":        "",
	}
	for name, token := range tests {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("%s: ValidateToken() expected error", name)
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer abc", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := extractBearerToken(r); got != tt.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
