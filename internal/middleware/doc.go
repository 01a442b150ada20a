// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package middleware provides infrastructure HTTP middleware shared by every
route: request ID propagation, Prometheus instrumentation and access logging.

All middleware use the func(http.Handler) http.Handler shape so they can be
installed with chi's Router.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

RequestID honours an inbound X-Request-ID header and otherwise generates a
UUID. The ID is echoed in the response and stored in the request context via
the logging package, so logging.Ctx(ctx) carries it.

PrometheusMetrics labels requests with the chi route pattern rather than the
raw path, which keeps label cardinality bounded when core names appear in
URLs.
*/
package middleware
