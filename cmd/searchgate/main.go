// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

// Package main is the entry point for the Searchgate server.
//
// Searchgate embeds a set of bleve search cores behind an HTTP surface
// modelled on the Solr URL layout and gates every request to it through an
// access guard. Administrative, update, replication and configuration-file
// paths, as well as any path naming a registered core, require a logged-in
// identity holding the configured base permissions.
//
// # Startup
//
//  1. Configuration: koanf v2 layers (defaults, config.yaml, environment)
//  2. Logging: zerolog, with suture events bridged through slog
//  3. Core container: node.yaml from SEARCH_HOME, falling back once to
//     SEARCH_FALLBACK_HOME when the node configuration is invalid
//  4. Identity: session store (memory or badger), optional JWT bearer tokens
//  5. Authorization: casbin RBAC enforcer over the base permissions
//  6. HTTP: chi router under a suture supervisor tree
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
// HTTP_SHUTDOWN_TIMEOUT, then the cores, the enforcer and the session
// store are closed in that order.
//
// # Example
//
//	export SEARCH_HOME=/var/lib/searchgate/home
//	export JWT_SECRET=$(openssl rand -base64 32)
//	./searchgate
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/searchgate/internal/api"
	"github.com/tomtom215/searchgate/internal/auth"
	"github.com/tomtom215/searchgate/internal/authz"
	"github.com/tomtom215/searchgate/internal/config"
	"github.com/tomtom215/searchgate/internal/guard"
	"github.com/tomtom215/searchgate/internal/i18n"
	"github.com/tomtom215/searchgate/internal/logging"
	"github.com/tomtom215/searchgate/internal/metrics"
	"github.com/tomtom215/searchgate/internal/search"
	"github.com/tomtom215/searchgate/internal/supervisor"
	"github.com/tomtom215/searchgate/internal/supervisor/services"
)

//nolint:gocyclo // sequential setup
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("base_path", cfg.Server.BasePath).
		Str("search_home", cfg.Search.Home).
		Str("session_store", cfg.Security.SessionStore).
		Msg("Starting Searchgate")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Core container
	container, err := search.Bootstrap(ctx, search.BootstrapConfigFrom(&cfg.Search))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize core container")
	}
	defer func() {
		if err := container.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cores")
		}
	}()
	metrics.SetCoreCounts(len(container.CoreNames()), len(container.InitFailures()))
	logging.Info().
		Str("home", container.Home()).
		Strs("cores", container.CoreNames()).
		Int("init_failures", len(container.InitFailures())).
		Msg("Core container ready")

	// Identity
	factory, err := auth.NewSessionStoreFactory(auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := factory.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	store := factory.CreateStore()

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		if !errors.Is(err, auth.ErrTokensDisabled) {
			logging.Fatal().Err(err).Msg("Failed to initialize bearer tokens")
		}
		logging.Info().Msg("JWT_SECRET not set, bearer tokens disabled")
	}

	users, err := auth.NewUserDirectory(cfg.Security.Users)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load users")
	}

	identityCfg := auth.DefaultIdentityMiddlewareConfig()
	identityCfg.CookieName = cfg.Security.CookieName
	identityCfg.SessionTTL = cfg.Security.SessionTTL
	identityCfg.CookieSecure = cfg.Security.CookieSecure
	identity := auth.NewIdentityMiddleware(store, tokens, identityCfg)

	// Authorization
	enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize RBAC enforcer")
	}
	defer enforcer.Close()
	authorizer := authz.NewAuthorizer(enforcer, cfg.Security.BasePermissions)

	catalog, err := i18n.New(cfg.Security.DefaultLocale)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load message catalog")
	}

	gate := guard.New(authorizer, container, catalog, guard.Config{
		BasePath: cfg.Server.BasePath,
		Timing:   cfg.Logging.Timing,
	})

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwCfg.LoginRateLimit = cfg.Security.LoginRateLimit
	mwCfg.LoginRateWindow = cfg.Security.LoginRateWindow

	router := api.NewRouter(api.Dependencies{
		Engine:         search.NewHandler(container, search.NewIndexService(container)),
		Guard:          gate.Middleware,
		Identity:       identity,
		Auth:           auth.NewAuthHandlers(users, identity),
		Health:         api.NewHealthHandler(container, container.Home()),
		BasePath:       cfg.Server.BasePath,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		Middleware:     mwCfg,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Supervisor tree
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewSessionCleanupService(store, cfg.Security.CleanupInterval))
	if db := factory.DB(); db != nil && cfg.Security.SessionStorePath != "" {
		tree.AddMaintenanceService(services.NewBadgerGCService(db, 0))
	}

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logging.Info().Msg("Searchgate stopped")
}
