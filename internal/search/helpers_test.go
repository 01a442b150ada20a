// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates path (and parents) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newHome writes a home directory with node.yaml and one in-memory core per
// name.
func newHome(t *testing.T, cores ...string) string {
	t.Helper()
	home := t.TempDir()
	writeFile(t, filepath.Join(home, NodeConfigFile), "core_root: cores\nmax_rows: 50\n")
	for _, name := range cores {
		writeFile(t, filepath.Join(home, "cores", name, CoreDescriptorFile), "data_dir: \":memory:\"\n")
	}
	return home
}

func newContainer(t *testing.T, cores ...string) *CoreContainer {
	t.Helper()
	cc, err := Bootstrap(context.Background(), BootstrapConfig{Home: newHome(t, cores...)})
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })
	return cc
}
