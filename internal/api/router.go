// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/searchgate/internal/auth"
	"github.com/tomtom215/searchgate/internal/middleware"
)

// DefaultMetricsPath is used when metrics are enabled without a path.
const DefaultMetricsPath = "/metrics"

// Dependencies are the collaborators the router wires together.
type Dependencies struct {
	// Engine serves the search cores. It is wrapped by Guard.
	Engine http.Handler

	// Guard wraps Engine. Nil leaves the engine unguarded, which only tests
	// should do.
	Guard func(http.Handler) http.Handler

	Identity *auth.IdentityMiddleware
	Auth     *auth.AuthHandlers
	Health   *HealthHandler

	BasePath       string
	MetricsEnabled bool
	MetricsPath    string

	Middleware *ChiMiddlewareConfig
}

// Router is the root HTTP handler.
type Router struct {
	mux chi.Router
}

// NewRouter builds the chi tree described in the package documentation.
func NewRouter(deps Dependencies) *Router {
	mw := NewChiMiddleware(deps.Middleware)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

	if deps.Health != nil {
		r.Get("/healthz", deps.Health.ServeHTTP)
	}

	if deps.MetricsEnabled {
		path := deps.MetricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		r.Handle(path, promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		if deps.Identity != nil {
			r.Use(deps.Identity.Handler)
		}

		if deps.Auth != nil {
			r.Route("/auth", func(r chi.Router) {
				r.With(mw.RateLimitLogin()).Post("/login", deps.Auth.Login)
				r.Post("/logout", deps.Auth.Logout)
				r.Get("/userinfo", deps.Auth.UserInfo)
			})
		}

		if deps.Engine != nil {
			engine := deps.Engine
			if deps.Guard != nil {
				engine = deps.Guard(engine)
			}
			r.Mount(mountPoint(deps.BasePath), engine)
		}
	})

	return &Router{mux: r}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// mountPoint normalizes a configured base path: "solr/" becomes "/solr" and
// an empty value mounts the engine at the root.
func mountPoint(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return "/"
	}
	return "/" + base
}
