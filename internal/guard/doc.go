// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package guard is the access gate in front of the search engine handler.

The gate runs two checks on the path relative to the engine mount point:

 1. Core probe: a path of the form /{core}/... for any registered core
    requires an identity holding the base permission. This runs first.
 2. Category: /admin/... paths, and paths ending in /update, /update/json,
    /update/csv, /update/extract, /replication, /file or /file/ require the
    same permission and carry category-specific messages.

A denial is 401 when the request has no identity and 403 when the identity
lacks permission. Administrative denials return {"ofbizLogin":true}; every
other denial returns

	{"responseHeader":{"status":403,"message":"<localized text>"}}

Allowed requests reach the wrapped handler untouched. With timing enabled,
non-static requests are bracketed by "Request begun" and "Request done" log
lines and observed in searchgate_engine_request_duration_seconds. Static
asset suffixes are exempt from timing only, never from the checks.

The guard holds no mutable state. Identity and permission come from an
Authorizer, core names from a CoreRegistry and text from Messages, all
injected at construction.
*/
package guard
