// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestExpandPlaceholders(t *testing.T) {
	props := map[string]string{"root": "/srv/search", "empty": ""}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no placeholders", "core_root: cores", "core_root: cores", false},
		{"property", "core_root: ${root}/cores", "core_root: /srv/search/cores", false},
		{"default unused", "x: ${root:/tmp}", "x: /srv/search", false},
		{"default used", "x: ${missing:/tmp/idx}", "x: /tmp/idx", false},
		{"empty default", "x: '${missing:}'", "x: ''", false},
		{"empty property wins over default", "x: '${empty:fallback}'", "x: ''", false},
		{"shell style left alone", "x: $root", "x: $root", false},
		{"missing without default", "x: ${missing}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPlaceholders(tt.input, props)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandPlaceholders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expandPlaceholders() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadNodeConfig(t *testing.T) {
	t.Run("valid with defaults", func(t *testing.T) {
		home := t.TempDir()
		writeFile(t, filepath.Join(home, NodeConfigFile), "core_root: ${cores:cores}\n")

		cfg, err := LoadNodeConfig(home, nil)
		if err != nil {
			t.Fatalf("LoadNodeConfig() error = %v", err)
		}
		if cfg.CoreRoot != "cores" {
			t.Errorf("CoreRoot = %q, want cores", cfg.CoreRoot)
		}
		if cfg.DefaultAnalyzer != defaultAnalyzer || cfg.MaxRows != defaultMaxRows {
			t.Errorf("defaults not applied: %+v", cfg)
		}
	})

	t.Run("search_home resolves to home", func(t *testing.T) {
		home := t.TempDir()
		writeFile(t, filepath.Join(home, NodeConfigFile), "core_root: ${search_home}/cores\n")

		cfg, err := LoadNodeConfig(home, nil)
		if err != nil {
			t.Fatalf("LoadNodeConfig() error = %v", err)
		}
		if cfg.CoreRoot != home+"/cores" {
			t.Errorf("CoreRoot = %q", cfg.CoreRoot)
		}
	})

	invalid := map[string]string{
		"empty file":        "",
		"malformed yaml":    "core_root: [unclosed\n",
		"unknown key":       "core_root: cores\nbogus: 1\n",
		"missing core_root": "max_rows: 10\n",
		"bad analyzer":      "core_root: cores\ndefault_analyzer: klingon\n",
		"max_rows too big":  "core_root: cores\nmax_rows: 1000000\n",
		"unresolved":        "core_root: ${nowhere}\n",
	}
	for name, content := range invalid {
		t.Run(name, func(t *testing.T) {
			home := t.TempDir()
			writeFile(t, filepath.Join(home, NodeConfigFile), content)
			if _, err := LoadNodeConfig(home, nil); !errors.Is(err, ErrInvalidNodeConfig) {
				t.Errorf("LoadNodeConfig() error = %v, want ErrInvalidNodeConfig", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadNodeConfig(t.TempDir(), nil); !errors.Is(err, ErrInvalidNodeConfig) {
			t.Errorf("LoadNodeConfig() error = %v, want ErrInvalidNodeConfig", err)
		}
	})
}

func TestLoadCoreDescriptor(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "products")
	writeFile(t, filepath.Join(dir, CoreDescriptorFile), "analyzer: en\nload_on_startup: false\n")

	desc, err := LoadCoreDescriptor(dir, nil)
	if err != nil {
		t.Fatalf("LoadCoreDescriptor() error = %v", err)
	}
	if desc.Name != "products" {
		t.Errorf("Name = %q, want directory name", desc.Name)
	}
	if desc.DataDir != defaultDataDir {
		t.Errorf("DataDir = %q, want %q", desc.DataDir, defaultDataDir)
	}
	if desc.loadOnStartup() {
		t.Error("loadOnStartup() = true, want false")
	}

	bad := filepath.Join(t.TempDir(), "bad")
	writeFile(t, filepath.Join(bad, CoreDescriptorFile), "name: ../escape\n")
	if _, err := LoadCoreDescriptor(bad, nil); !errors.Is(err, ErrInvalidCoreDescriptor) {
		t.Errorf("LoadCoreDescriptor() error = %v, want ErrInvalidCoreDescriptor", err)
	}
}
