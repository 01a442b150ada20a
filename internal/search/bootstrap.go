// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/searchgate/internal/config"
	"github.com/tomtom215/searchgate/internal/logging"
	"github.com/tomtom215/searchgate/internal/metrics"
)

// BootstrapConfig locates the home directory. It is passed explicitly at
// construction rather than read from process-wide state.
type BootstrapConfig struct {
	Home         string
	FallbackHome string
	Properties   map[string]string
}

// BootstrapConfigFrom adapts the search section of the process config.
func BootstrapConfigFrom(cfg *config.SearchConfig) BootstrapConfig {
	return BootstrapConfig{
		Home:         cfg.Home,
		FallbackHome: cfg.FallbackHome,
		Properties:   cfg.Properties,
	}
}

// Bootstrap loads the container from cfg.Home, retrying once with
// cfg.FallbackHome when the primary node configuration is invalid.
func Bootstrap(ctx context.Context, cfg BootstrapConfig) (*CoreContainer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cc, err := load(cfg.Home, cfg.Properties)
	if err == nil {
		return cc, nil
	}
	if !errors.Is(err, ErrInvalidNodeConfig) || cfg.FallbackHome == "" {
		return nil, err
	}

	metrics.BootstrapFallbacks.Inc()
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("home", cfg.Home).
		Str("fallback_home", cfg.FallbackHome).
		Msg("Invalid node configuration, retrying with fallback home")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cc, ferr := load(cfg.FallbackHome, cfg.Properties)
	if ferr != nil {
		return nil, fmt.Errorf("fallback home %s: %w", cfg.FallbackHome, ferr)
	}
	return cc, nil
}

func load(home string, props map[string]string) (*CoreContainer, error) {
	node, err := LoadNodeConfig(home, props)
	if err != nil {
		return nil, err
	}
	return NewCoreContainer(home, node, props)
}
