// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Search   SearchConfig   `koanf:"search"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`

	// BasePath is where the engine is mounted. Guard classification runs on
	// the path below it, so "/solr/mycore/update" is checked as "/mycore/update".
	BasePath string `koanf:"base_path"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`
	Environment string   `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SearchConfig holds core container bootstrap settings.
type SearchConfig struct {
	// Home is the primary home directory containing node.yaml.
	Home string `koanf:"home"`

	// FallbackHome is tried once when Home holds an invalid node configuration.
	FallbackHome string `koanf:"fallback_home"`

	// Properties substitute ${name} and ${name:default} placeholders in node
	// and core files.
	// Keys must not contain dots; the loader treats dots as nesting.
	Properties map[string]string `koanf:"properties"`
}

// SecurityConfig holds identity and authorization settings.
type SecurityConfig struct {
	// SessionStore is "memory" or "badger".
	SessionStore     string        `koanf:"session_store"`
	SessionStorePath string        `koanf:"session_store_path"`
	SessionTTL       time.Duration `koanf:"session_ttl"`
	CleanupInterval  time.Duration `koanf:"cleanup_interval"`
	CookieName       string        `koanf:"cookie_name"`
	CookieSecure     bool          `koanf:"cookie_secure"`

	// BasePermissions must all be granted for any guarded path. The literal
	// NONE disables the check for that entry.
	BasePermissions []string `koanf:"base_permissions"`

	// JWTSecret enables bearer tokens when set (HS256, at least 32 bytes).
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`

	DefaultLocale string `koanf:"default_locale"`

	Casbin CasbinConfig `koanf:"casbin"`
	Users  []UserConfig `koanf:"users"`
}

// CasbinConfig holds RBAC model and policy locations.
// Empty paths select the embedded model and policy.
type CasbinConfig struct {
	ModelPath      string        `koanf:"model_path"`
	PolicyPath     string        `koanf:"policy_path"`
	AutoReload     bool          `koanf:"auto_reload"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
}

// UserConfig is one locally configured account.
type UserConfig struct {
	Username     string   `koanf:"username"`
	PasswordHash string   `koanf:"password_hash"` // bcrypt
	Roles        []string `koanf:"roles"`
	Locale       string   `koanf:"locale"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`

	// Timing logs begin/end of every forwarded engine request that is not a
	// static asset.
	Timing bool `koanf:"timing"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
