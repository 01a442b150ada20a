// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/searchgate/internal/validation"
)

const (
	// NodeConfigFile is the node configuration file name inside a home directory.
	NodeConfigFile = "node.yaml"

	// CoreDescriptorFile marks a directory as a core.
	CoreDescriptorFile = "core.yaml"

	// MemoryDataDir selects an in-memory index.
	MemoryDataDir = ":memory:"

	// HomeProperty always resolves to the home directory being loaded.
	HomeProperty = "search_home"

	defaultDataDir  = "data"
	defaultAnalyzer = "standard"
	defaultMaxRows  = 1000
)

var (
	// ErrInvalidNodeConfig marks a configuration-format failure of node.yaml.
	// Only this error triggers the fallback home.
	ErrInvalidNodeConfig = errors.New("invalid node configuration")

	// ErrInvalidCoreDescriptor marks a malformed core.yaml.
	ErrInvalidCoreDescriptor = errors.New("invalid core descriptor")
)

// NodeConfig is the content of node.yaml.
type NodeConfig struct {
	// CoreRoot is scanned for core directories. Relative to the home directory.
	CoreRoot string `yaml:"core_root" validate:"required"`

	// DataRoot, when set, holds every core's index under DataRoot/<core>.
	// Otherwise indexes live inside the core directory.
	DataRoot string `yaml:"data_root"`

	DefaultAnalyzer string `yaml:"default_analyzer" validate:"omitempty,oneof=standard keyword simple en"`

	// MaxRows caps the rows parameter of a query.
	MaxRows int `yaml:"max_rows" validate:"omitempty,min=1,max=100000"`
}

// CoreDescriptor is the content of core.yaml.
type CoreDescriptor struct {
	// Name defaults to the directory name.
	Name string `yaml:"name" validate:"omitempty,corename"`

	DataDir       string `yaml:"data_dir"`
	LoadOnStartup *bool  `yaml:"load_on_startup"`
	Analyzer      string `yaml:"analyzer" validate:"omitempty,oneof=standard keyword simple en"`
	DefaultField  string `yaml:"default_field" validate:"omitempty,max=128"`
}

// loadOnStartup defaults to true.
func (d *CoreDescriptor) loadOnStartup() bool {
	return d.LoadOnStartup == nil || *d.LoadOnStartup
}

func (n *NodeConfig) applyDefaults() {
	if n.DefaultAnalyzer == "" {
		n.DefaultAnalyzer = defaultAnalyzer
	}
	if n.MaxRows == 0 {
		n.MaxRows = defaultMaxRows
	}
}

// LoadNodeConfig reads and validates <home>/node.yaml. Every failure wraps
// ErrInvalidNodeConfig.
func LoadNodeConfig(home string, props map[string]string) (*NodeConfig, error) {
	path := filepath.Join(home, NodeConfigFile)

	var cfg NodeConfig
	if err := decodeYAMLFile(path, withHome(props, home), &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidNodeConfig, path, err)
	}
	if verr := validation.ValidateStruct(&cfg); verr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidNodeConfig, path, verr)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadCoreDescriptor reads and validates <dir>/core.yaml.
func LoadCoreDescriptor(dir string, props map[string]string) (*CoreDescriptor, error) {
	path := filepath.Join(dir, CoreDescriptorFile)

	var desc CoreDescriptor
	if err := decodeYAMLFile(path, props, &desc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCoreDescriptor, path, err)
	}
	if verr := validation.ValidateStruct(&desc); verr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCoreDescriptor, path, verr)
	}
	if desc.Name == "" {
		desc.Name = filepath.Base(dir)
	}
	if desc.DataDir == "" {
		desc.DataDir = defaultDataDir
	}
	return &desc, nil
}

// decodeYAMLFile expands placeholders and strictly decodes path into out.
// Unknown keys and empty files are errors.
func decodeYAMLFile(path string, props map[string]string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	expanded, err := expandPlaceholders(string(raw), props)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)(?::([^}]*))?\}`)

// expandPlaceholders substitutes ${name} and ${name:default}. A placeholder
// with no property and no default is an error.
func expandPlaceholders(s string, props map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := placeholderPattern.FindStringSubmatch(m)
		name := sub[1]
		if v, ok := props[name]; ok {
			return v
		}
		if strings.Contains(m, ":") {
			return sub[2]
		}
		missing = append(missing, name)
		return m
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved properties: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func withHome(props map[string]string, home string) map[string]string {
	out := make(map[string]string, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	if _, ok := out[HomeProperty]; !ok {
		out[HomeProperty] = home
	}
	return out
}

// resolvePath joins rel onto base unless rel is absolute.
func resolvePath(base, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(base, rel)
}
