// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/searchgate/internal/config"
)

const testJWTSecret = "test-secret-that-is-at-least-32-bytes-long"

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func newTestDirectory(t *testing.T) *UserDirectory {
	t.Helper()
	dir, err := NewUserDirectory([]config.UserConfig{
		{Username: "alice", PasswordHash: hashPassword(t, "alice-pass"), Roles: []string{"searcher"}, Locale: "fr"},
		{Username: "bob", PasswordHash: hashPassword(t, "bob-pass")},
	})
	if err != nil {
		t.Fatalf("NewUserDirectory: %v", err)
	}
	return dir
}

func newTestJWTManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testJWTSecret, TokenTTL: ttl})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func testSession(id, userID string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		UserID:         userID,
		Username:       userID,
		Roles:          []string{"searcher"},
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		LastAccessedAt: now,
	}
}
