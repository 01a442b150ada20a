// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSearch(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	return c.validateMetrics()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.BasePath != "" {
		if !strings.HasPrefix(c.Server.BasePath, "/") || strings.HasSuffix(c.Server.BasePath, "/") {
			return fmt.Errorf("BASE_PATH must start with '/' and must not end with '/', got %q", c.Server.BasePath)
		}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production; set specific origins")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateSearch() error {
	if c.Search.Home == "" {
		return fmt.Errorf("SEARCH_HOME is required")
	}
	if c.Search.FallbackHome == "" {
		return fmt.Errorf("SEARCH_FALLBACK_HOME is required")
	}
	return nil
}

// minJWTSecretLength is the minimum HS256 secret length in bytes.
const minJWTSecretLength = 32

// Login rate limit bounds
const (
	minLoginRateLimit  = 1
	maxLoginRateLimit  = 10000
	minLoginRateWindow = time.Second
	maxLoginRateWindow = time.Hour
)

func (c *Config) validateSecurity() error {
	s := &c.Security

	switch s.SessionStore {
	case "memory":
	case "badger":
		if s.SessionStorePath == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}

	if s.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if s.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE is required")
	}
	if len(s.BasePermissions) == 0 {
		return fmt.Errorf("BASE_PERMISSIONS must name at least one permission (use NONE to disable)")
	}

	if s.JWTSecret != "" && len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if s.JWTSecret != "" && s.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TOKEN_TTL must be positive when JWT_SECRET is set")
	}

	if s.LoginRateLimit < minLoginRateLimit || s.LoginRateLimit > maxLoginRateLimit {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be between %d and %d", minLoginRateLimit, maxLoginRateLimit)
	}
	if s.LoginRateWindow < minLoginRateWindow || s.LoginRateWindow > maxLoginRateWindow {
		return fmt.Errorf("LOGIN_RATE_WINDOW must be between %v and %v", minLoginRateWindow, maxLoginRateWindow)
	}

	if s.DefaultLocale == "" {
		return fmt.Errorf("DEFAULT_LOCALE is required")
	}

	if s.Casbin.AutoReload && s.Casbin.ReloadInterval < time.Second {
		return fmt.Errorf("CASBIN_RELOAD_INTERVAL must be at least 1s when auto reload is enabled")
	}

	return c.validateUsers()
}

func (c *Config) validateUsers() error {
	seen := make(map[string]bool, len(c.Security.Users))
	for i, u := range c.Security.Users {
		if u.Username == "" {
			return fmt.Errorf("security.users[%d]: username is required", i)
		}
		if seen[u.Username] {
			return fmt.Errorf("security.users[%d]: duplicate username %q", i, u.Username)
		}
		seen[u.Username] = true
		if !strings.HasPrefix(u.PasswordHash, "$2") {
			return fmt.Errorf("security.users[%d]: password_hash must be a bcrypt hash", i)
		}
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with '/'")
	}
	return nil
}
