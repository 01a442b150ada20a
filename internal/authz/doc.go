// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

// Package authz decides whether an authenticated identity holds the
// permissions needed to reach the search engine.
//
// Decisions are made by a Casbin SyncedEnforcer over a small RBAC model:
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && (r.obj == p.obj || p.obj == "*") && (r.act == p.act || p.act == "*")
//
// The object of a request is a permission name such as SEARCH and the action
// is view. Subjects are user IDs and role names. The model and policy are
// embedded and can be replaced by files named in the security.casbin config
// section; a file policy may be reloaded periodically.
//
// # Base permission
//
// The Authorizer type is the gate's view of this package. An identity holds
// the base permission when every configured permission grants view to the
// identity's user ID or to one of its roles. The literal permission NONE is
// skipped, so configuring only NONE lets every authenticated identity
// through. Enforcement errors are logged and treated as a denial.
//
// Decisions are never cached: policy reloads take effect on the next
// request.
package authz
