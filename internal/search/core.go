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
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	// Analyzers selectable through default_analyzer and analyzer.
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/en"

	"github.com/tomtom215/searchgate/internal/logging"
)

// ErrCoreClosed is returned when a core is used after Close.
var ErrCoreClosed = errors.New("core is closed")

// Core is one named bleve index plus its on-disk instance directory.
type Core struct {
	name        string
	instanceDir string
	dataPath    string
	desc        CoreDescriptor
	analyzer    string

	mu       sync.Mutex
	index    bleve.Index
	openedAt time.Time
	closed   bool

	// generation counts committed write batches. It stands in for the
	// index version reported by /replication.
	generation atomic.Uint64
}

// CoreStatus is the per-core entry of /admin/cores?action=STATUS.
type CoreStatus struct {
	Name        string     `json:"name"`
	InstanceDir string     `json:"instanceDir"`
	DataDir     string     `json:"dataDir"`
	Loaded      bool       `json:"loaded"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	NumDocs     uint64     `json:"numDocs"`
	Version     uint64     `json:"version"`
}

func newCore(instanceDir, dataBase string, desc *CoreDescriptor, node *NodeConfig) *Core {
	c := &Core{
		name:        desc.Name,
		instanceDir: instanceDir,
		desc:        *desc,
		analyzer:    node.DefaultAnalyzer,
	}
	if desc.Analyzer != "" {
		c.analyzer = desc.Analyzer
	}
	if desc.DataDir == MemoryDataDir {
		c.dataPath = MemoryDataDir
	} else {
		c.dataPath = resolvePath(dataBase, desc.DataDir)
	}
	return c
}

// Name returns the registered core name.
func (c *Core) Name() string { return c.name }

// InstanceDir returns the directory holding core.yaml.
func (c *Core) InstanceDir() string { return c.instanceDir }

// ConfDir returns the directory served by /admin/file.
func (c *Core) ConfDir() string { return filepath.Join(c.instanceDir, "conf") }

// Generation returns the number of committed write batches.
func (c *Core) Generation() uint64 { return c.generation.Load() }

// Index returns the core's bleve index, opening it on first use.
func (c *Core) Index() (bleve.Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCoreClosed
	}
	if c.index != nil {
		return c.index, nil
	}

	idx, err := c.open()
	if err != nil {
		return nil, err
	}
	c.index = idx
	c.openedAt = time.Now()

	logging.Info().
		Str("core", c.name).
		Str("data_dir", c.dataPath).
		Msg("Core opened")
	return idx, nil
}

func (c *Core) open() (bleve.Index, error) {
	if c.dataPath == MemoryDataDir {
		idx, err := bleve.NewMemOnly(c.indexMapping())
		if err != nil {
			return nil, fmt.Errorf("core %s: create in-memory index: %w", c.name, err)
		}
		return idx, nil
	}

	if _, err := os.Stat(c.dataPath); err == nil {
		idx, err := bleve.Open(c.dataPath)
		if err != nil {
			return nil, fmt.Errorf("core %s: open index %s: %w", c.name, c.dataPath, err)
		}
		return idx, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("core %s: stat %s: %w", c.name, c.dataPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(c.dataPath), 0o750); err != nil {
		return nil, fmt.Errorf("core %s: create data dir: %w", c.name, err)
	}
	idx, err := bleve.New(c.dataPath, c.indexMapping())
	if err != nil {
		return nil, fmt.Errorf("core %s: create index %s: %w", c.name, c.dataPath, err)
	}
	return idx, nil
}

func (c *Core) indexMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = c.analyzer
	if c.desc.DefaultField != "" {
		m.DefaultField = c.desc.DefaultField
	}
	return m
}

// Status reports the core without forcing it open.
func (c *Core) Status() CoreStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := CoreStatus{
		Name:        c.name,
		InstanceDir: c.instanceDir,
		DataDir:     c.dataPath,
		Loaded:      c.index != nil,
		Version:     c.generation.Load(),
	}
	if c.index != nil {
		started := c.openedAt
		st.StartTime = &started
		if n, err := c.index.DocCount(); err == nil {
			st.NumDocs = n
		}
	}
	return st
}

func (c *Core) bump() {
	c.generation.Add(1)
}

// Close closes the index if open. The core cannot be reopened.
func (c *Core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.index == nil {
		return nil
	}
	err := c.index.Close()
	c.index = nil
	if err != nil {
		return fmt.Errorf("core %s: close: %w", c.name, err)
	}
	return nil
}
