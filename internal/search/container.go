// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tomtom215/searchgate/internal/logging"
	"github.com/tomtom215/searchgate/internal/metrics"
)

// ErrCoreNotFound is returned for names absent from the registry.
var ErrCoreNotFound = errors.New("core not found")

// CoreContainer owns the registered cores of one home directory.
type CoreContainer struct {
	home string
	node *NodeConfig

	mu       sync.RWMutex
	cores    map[string]*Core
	failures map[string]string
}

// NewCoreContainer discovers and opens the cores described by node. Core
// failures are recorded, not returned; only an unreadable core_root fails.
func NewCoreContainer(home string, node *NodeConfig, props map[string]string) (*CoreContainer, error) {
	cc := &CoreContainer{
		home:     home,
		node:     node,
		cores:    make(map[string]*Core),
		failures: make(map[string]string),
	}

	coreRoot := resolvePath(home, node.CoreRoot)
	entries, err := os.ReadDir(coreRoot)
	if err != nil {
		return nil, fmt.Errorf("read core root %s: %w", coreRoot, err)
	}

	props = withHome(props, home)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(coreRoot, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, CoreDescriptorFile)); err != nil {
			continue
		}
		cc.register(dir, props)
	}

	metrics.SetCoreCounts(len(cc.cores), len(cc.failures))
	logging.Info().
		Str("home", home).
		Int("cores", len(cc.cores)).
		Int("failures", len(cc.failures)).
		Msg("Core container loaded")
	return cc, nil
}

func (cc *CoreContainer) register(dir string, props map[string]string) {
	desc, err := LoadCoreDescriptor(dir, props)
	if err != nil {
		cc.fail(filepath.Base(dir), err)
		return
	}
	if _, dup := cc.cores[desc.Name]; dup {
		cc.fail(desc.Name, fmt.Errorf("duplicate core name in %s", dir))
		return
	}

	dataBase := dir
	if cc.node.DataRoot != "" {
		dataBase = filepath.Join(resolvePath(cc.home, cc.node.DataRoot), desc.Name)
	}
	core := newCore(dir, dataBase, desc, cc.node)

	if desc.loadOnStartup() {
		if _, err := core.Index(); err != nil {
			cc.fail(desc.Name, err)
			return
		}
	}
	cc.cores[desc.Name] = core
}

func (cc *CoreContainer) fail(name string, err error) {
	cc.failures[name] = err.Error()
	logging.Error().Err(err).Str("core", name).Msg("Core failed to initialize")
}

// Home returns the home directory the container was loaded from.
func (cc *CoreContainer) Home() string { return cc.home }

// NodeConfig returns the loaded node configuration.
func (cc *CoreContainer) NodeConfig() NodeConfig { return *cc.node }

// CoreNames returns the registered core names in sorted order.
func (cc *CoreContainer) CoreNames() []string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	names := make([]string, 0, len(cc.cores))
	for name := range cc.cores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Core returns the named core.
func (cc *CoreContainer) Core(name string) (*Core, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	core, ok := cc.cores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCoreNotFound, name)
	}
	return core, nil
}

// InitFailures maps core names to the error that kept them unregistered.
func (cc *CoreContainer) InitFailures() map[string]string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	out := make(map[string]string, len(cc.failures))
	for k, v := range cc.failures {
		out[k] = v
	}
	return out
}

// Close closes every core and empties the registry.
func (cc *CoreContainer) Close() error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	var errs []error
	for name, core := range cc.cores {
		if err := core.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(cc.cores, name)
	}
	metrics.SetCoreCounts(0, len(cc.failures))
	return errors.Join(errs...)
}
