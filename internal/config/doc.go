// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package config loads and validates Searchgate configuration.

Configuration is layered with Koanf v2:
 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/searchgate/config.yaml)
 3. Environment variables (highest priority, explicit mapping table only)

Sections:
  - server: listener address, base path of the engine mount, timeouts, CORS
  - search: primary and fallback home directories, placeholder properties
  - security: session store, cookie, base permissions, Casbin, JWT, local users
  - logging: level, format, caller, request timing
  - metrics: Prometheus endpoint

Usage:

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("configuration invalid")
	}

Users cannot be supplied through the environment; define them in the YAML file
with bcrypt password hashes.
*/
package config
