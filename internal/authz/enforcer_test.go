// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package authz

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/searchgate/internal/config"
)

func setupEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e := setupEnforcer(t)

	tests := []struct {
		name    string
		subject string
		object  string
		action  string
		want    bool
	}{
		{"searcher can view SEARCH", "searcher", "SEARCH", "view", true},
		{"searcher cannot update", "searcher", "SEARCH", "update", false},
		{"indexer inherits view", "indexer", "SEARCH", "view", true},
		{"indexer can update", "indexer", "SEARCH", "update", true},
		{"admin wildcard", "admin", "ANYTHING", "delete", true},
		{"unknown subject", "mallory", "SEARCH", "view", false},
		{"searcher other permission", "searcher", "ENTITY_MAINT", "view", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Enforce(tt.subject, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%q, %q, %q) = %v, want %v", tt.subject, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforcer_EnforceWithRoles(t *testing.T) {
	e := setupEnforcer(t)

	allowed, err := e.EnforceWithRoles("user-1", []string{"guest", "searcher"}, "SEARCH", "view")
	if err != nil {
		t.Fatalf("EnforceWithRoles() error = %v", err)
	}
	if !allowed {
		t.Error("expected grant through searcher role")
	}

	allowed, err = e.EnforceWithRoles("user-1", nil, "SEARCH", "view")
	if err != nil {
		t.Fatalf("EnforceWithRoles() error = %v", err)
	}
	if allowed {
		t.Error("expected deny without roles")
	}

	if _, err := e.AddPolicy("user-1", "SEARCH", "view"); err != nil {
		t.Fatalf("AddPolicy() error = %v", err)
	}
	allowed, _ = e.EnforceWithRoles("user-1", nil, "SEARCH", "view")
	if !allowed {
		t.Error("expected direct grant to user ID")
	}

	if _, err := e.RemovePolicy("user-1", "SEARCH", "view"); err != nil {
		t.Fatalf("RemovePolicy() error = %v", err)
	}
	allowed, _ = e.EnforceWithRoles("user-1", nil, "SEARCH", "view")
	if allowed {
		t.Error("expected deny after RemovePolicy")
	}
}

func TestEnforcer_AddRoleForUser(t *testing.T) {
	e := setupEnforcer(t)

	if _, err := e.AddRoleForUser("carol", "searcher"); err != nil {
		t.Fatalf("AddRoleForUser() error = %v", err)
	}
	allowed, err := e.Enforce("carol", "SEARCH", "view")
	if err != nil {
		t.Fatalf("Enforce() error = %v", err)
	}
	if !allowed {
		t.Error("expected carol to inherit searcher grant")
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	path := writePolicy(t, "p, reader, SEARCH, view\ng, dave, reader\n")

	e, err := NewEnforcer(&config.CasbinConfig{PolicyPath: path})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)

	if allowed, _ := e.Enforce("dave", "SEARCH", "view"); !allowed {
		t.Error("expected dave to be allowed by file policy")
	}
	if allowed, _ := e.Enforce("searcher", "SEARCH", "view"); allowed {
		t.Error("embedded policy must not apply when a file is configured")
	}

	if err := os.WriteFile(path, []byte("p, reader, OTHER, view\n"), 0o600); err != nil {
		t.Fatalf("rewrite policy: %v", err)
	}
	if err := e.LoadPolicy(); err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if allowed, _ := e.Enforce("reader", "SEARCH", "view"); allowed {
		t.Error("expected reload to drop the SEARCH grant")
	}
}

func TestEnforcer_LoadPolicyEmbedded(t *testing.T) {
	e := setupEnforcer(t)
	if err := e.LoadPolicy(); !errors.Is(err, ErrNoAdapter) {
		t.Errorf("LoadPolicy() error = %v, want ErrNoAdapter", err)
	}
}

func TestEnforcer_MissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	if _, err := NewEnforcer(&config.CasbinConfig{ModelPath: missing}); err == nil {
		t.Error("expected error for missing model file")
	}
	if _, err := NewEnforcer(&config.CasbinConfig{PolicyPath: missing}); err == nil {
		t.Error("expected error for missing policy file")
	}
}

func TestEnforcer_AutoReload(t *testing.T) {
	path := writePolicy(t, "p, reader, SEARCH, view\n")

	e, err := NewEnforcer(&config.CasbinConfig{PolicyPath: path, AutoReload: true})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	if !e.autoReload {
		t.Error("expected auto reload to be started")
	}
	e.Close()
}

func TestLoadEmbeddedPolicy_SkipsMalformedLines(t *testing.T) {
	e := setupEnforcer(t)
	before := len(e.GetPolicy())

	policy := "# comment\n\np, only-two\ng, lonely\nx, a, b, c\np, extra, PERM, view\n"
	if err := loadEmbeddedPolicy(e.enforcer, policy); err != nil {
		t.Fatalf("loadEmbeddedPolicy() error = %v", err)
	}
	if got := len(e.GetPolicy()); got != before+1 {
		t.Errorf("policy count = %d, want %d", got, before+1)
	}
}
