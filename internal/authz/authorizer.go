// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package authz

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/searchgate/internal/auth"
	"github.com/tomtom215/searchgate/internal/logging"
)

const (
	// ActionView is the action every base permission must grant.
	ActionView = "view"

	// PermissionNone disables a base permission entry.
	PermissionNone = "NONE"

	// DefaultBasePermission applies when none are configured.
	DefaultBasePermission = "SEARCH"
)

// PermissionChecker is the subset of Enforcer used by Authorizer.
type PermissionChecker interface {
	EnforceWithRoles(subject string, roles []string, object, action string) (bool, error)
}

// Authorizer answers the access guard's two questions: who is calling, and
// do they hold the base permission.
type Authorizer struct {
	checker     PermissionChecker
	permissions []string
}

// NewAuthorizer returns an Authorizer requiring every entry of permissions.
// Entries are trimmed; an empty list means DefaultBasePermission.
func NewAuthorizer(checker PermissionChecker, permissions []string) *Authorizer {
	perms := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	if len(perms) == 0 {
		perms = []string{DefaultBasePermission}
	}
	return &Authorizer{checker: checker, permissions: perms}
}

// Permissions returns the configured base permissions.
func (a *Authorizer) Permissions() []string {
	out := make([]string, len(a.permissions))
	copy(out, a.permissions)
	return out
}

// CurrentIdentity returns the identity resolved for r, or nil.
func (a *Authorizer) CurrentIdentity(r *http.Request) *auth.Identity {
	return auth.CurrentIdentity(r)
}

// HasBasePermission reports whether id is granted view on every base
// permission. A nil identity never has it.
func (a *Authorizer) HasBasePermission(id *auth.Identity, r *http.Request) bool {
	if id == nil {
		return false
	}
	start := time.Now()
	defer observeCheck(start)

	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}

	for _, perm := range a.permissions {
		if perm == PermissionNone {
			continue
		}
		allowed, err := a.checker.EnforceWithRoles(id.UserID, id.Roles, perm, ActionView)
		if err != nil {
			recordDecision(perm, decisionError)
			logging.Ctx(ctx).Error().
				Err(err).
				Str("user_id", id.UserID).
				Str("permission", perm).
				Msg("Permission check failed")
			return false
		}
		if !allowed {
			recordDecision(perm, decisionDeny)
			logging.Ctx(ctx).Debug().
				Str("user_id", id.UserID).
				Strs("roles", id.Roles).
				Str("permission", perm).
				Msg("Base permission not granted")
			return false
		}
		recordDecision(perm, decisionAllow)
	}
	return true
}
