// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package api assembles the HTTP surface of the process on a chi router.

Routes:

	GET  /healthz                 liveness plus core counts
	GET  /metrics                 Prometheus exposition (when enabled)
	POST /auth/login              rate limited per client IP
	POST /auth/logout
	GET  /auth/userinfo
	*    {base_path}/*            search engine behind the access guard

Every route runs behind request ID, real IP, panic recovery, CORS,
Prometheus instrumentation and access logging. Identity resolution (session
cookie, then bearer token) runs for the auth and engine routes; the access
guard runs only in front of the engine.
*/
package api
