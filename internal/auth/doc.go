// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package auth resolves who is calling the gate.

Identity comes from two places, checked in order:

 1. A session cookie issued by POST /auth/login. Sessions live in a
    SessionStore (memory or BadgerDB) and slide forward on every request.
 2. An "Authorization: Bearer" JWT signed with HS256, when a JWT secret is
    configured. Tokens are issued alongside the session at login.

Key Components:

  - Identity: the resolved principal, stored in the request context
  - SessionStore: MemorySessionStore and BadgerSessionStore
  - IdentityMiddleware: attaches the Identity to the request context
  - UserDirectory: locally configured accounts with bcrypt hashes
  - LoginHandler: login and logout endpoints

A request without a session or token continues anonymously. Deciding whether
an anonymous caller may proceed belongs to the guard, not to this package.

Usage:

	store := auth.NewMemorySessionStore()
	mw := auth.NewIdentityMiddleware(store, tokens, auth.DefaultIdentityMiddlewareConfig())
	handler := mw.Handler(next)

	id := auth.IdentityFromContext(r.Context()) // nil when anonymous
*/
package auth
