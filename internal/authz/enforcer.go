// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/searchgate/internal/config"
	"github.com/tomtom215/searchgate/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// DefaultReloadInterval applies when auto reload is on and no interval is set.
const DefaultReloadInterval = 30 * time.Second

// ErrNoAdapter is returned by LoadPolicy when the embedded policy is in use.
var ErrNoAdapter = errors.New("no policy file configured; using embedded policy")

// Enforcer wraps a Casbin SyncedEnforcer.
type Enforcer struct {
	cfg        config.CasbinConfig
	enforcer   *casbin.SyncedEnforcer
	autoReload bool
}

// NewEnforcer builds an enforcer from cfg. A nil cfg selects the embedded
// model and policy. Configured paths must exist.
func NewEnforcer(cfg *config.CasbinConfig) (*Enforcer, error) {
	var c config.CasbinConfig
	if cfg != nil {
		c = *cfg
	}

	m, err := loadModel(c.ModelPath)
	if err != nil {
		return nil, err
	}

	var enforcer *casbin.SyncedEnforcer
	if c.PolicyPath != "" {
		if _, statErr := os.Stat(c.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("casbin policy %s: %w", c.PolicyPath, statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(c.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{cfg: c, enforcer: enforcer}

	if c.AutoReload && c.PolicyPath != "" {
		interval := c.ReloadInterval
		if interval <= 0 {
			interval = DefaultReloadInterval
		}
		enforcer.StartAutoLoadPolicy(interval)
		e.autoReload = true
		logging.Info().
			Str("policy", c.PolicyPath).
			Dur("interval", interval).
			Msg("Casbin policy auto reload enabled")
	}

	return e, nil
}

func loadModel(path string) (model.Model, error) {
	if path == "" {
		m, err := model.NewModelFromString(embeddedModel)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded casbin model: %w", err)
		}
		return m, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("casbin model %s: %w", path, err)
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model %s: %w", path, err)
	}
	return m, nil
}

// loadEmbeddedPolicy parses CSV policy lines. Comments and blank lines are
// skipped, as are lines with too few fields.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch ptype, rule := parts[0], parts[1:]; ptype {
		case "p":
			if len(rule) < 3 {
				continue
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) < 2 {
				continue
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		}
	}
	return nil
}

// Enforce reports whether subject may perform action on object.
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// EnforceWithRoles is Enforce for the subject and then each of its roles,
// stopping at the first grant.
func (e *Enforcer) EnforceWithRoles(subject string, roles []string, object, action string) (bool, error) {
	if subject != "" {
		allowed, err := e.Enforce(subject, object, action)
		if err != nil || allowed {
			return allowed, err
		}
	}
	for _, role := range roles {
		allowed, err := e.Enforce(role, object, action)
		if err != nil || allowed {
			return allowed, err
		}
	}
	return false, nil
}

// AddRoleForUser grants role to user in the in-memory policy.
func (e *Enforcer) AddRoleForUser(user, role string) (bool, error) {
	added, err := e.enforcer.AddGroupingPolicy(user, role)
	if err != nil {
		return false, fmt.Errorf("failed to add role: %w", err)
	}
	return added, nil
}

// AddPolicy adds a grant to the in-memory policy.
func (e *Enforcer) AddPolicy(subject, object, action string) (bool, error) {
	added, err := e.enforcer.AddPolicy(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("failed to add policy: %w", err)
	}
	return added, nil
}

// RemovePolicy removes a grant from the in-memory policy.
func (e *Enforcer) RemovePolicy(subject, object, action string) (bool, error) {
	removed, err := e.enforcer.RemovePolicy(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("failed to remove policy: %w", err)
	}
	return removed, nil
}

// LoadPolicy rereads the policy file.
func (e *Enforcer) LoadPolicy() error {
	if e.cfg.PolicyPath == "" {
		return ErrNoAdapter
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload casbin policy: %w", err)
	}
	return nil
}

// GetPolicy returns all p rules.
func (e *Enforcer) GetPolicy() [][]string {
	//nolint:errcheck // only fails on a nil model
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

// Close stops policy auto reload.
func (e *Enforcer) Close() {
	if e.autoReload {
		e.enforcer.StopAutoLoadPolicy()
	}
}
