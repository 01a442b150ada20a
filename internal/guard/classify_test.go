// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package guard

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Category
		ok   bool
	}{
		{"/admin/cores", CategoryAdmin, true},
		{"/admin/update", CategoryAdmin, true},
		{"/admin", "", false},
		{"/core1/update", CategoryUpdate, true},
		{"/core1/update/json", CategoryUpdate, true},
		{"/core1/update/csv", CategoryUpdate, true},
		{"/core1/update/extract", CategoryUpdate, true},
		{"/core1/update/xml", "", false},
		{"/core1/replication", CategoryReplication, true},
		{"/core1/replication/", "", false},
		{"/core1/admin/file", CategoryFile, true},
		{"/core1/admin/file/", CategoryFile, true},
		{"/core1/profile", "", false},
		{"/core1/select", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := classify(tt.path)
		if ok != tt.ok || got.category != tt.want {
			t.Errorf("classify(%q) = (%q, %v), want (%q, %v)", tt.path, got.category, ok, tt.want, tt.ok)
		}
	}
}

func TestTargetsCore(t *testing.T) {
	names := []string{"core1", "prod.v2", ""}
	tests := map[string]bool{
		"/core1/select":   true,
		"/core1/":         true,
		"/core1":          false,
		"/core10/select":  false,
		"/prod.v2/update": true,
		"/prodxv2/update": false,
		"//select":        false,
	}
	for path, want := range tests {
		if got := targetsCore(path, names); got != want {
			t.Errorf("targetsCore(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsStatic(t *testing.T) {
	for _, p := range []string{"/a.css", "/b/c.js", "/favicon.ico", "/index.html", "/x.png", "/y.jpg", "/z.gif"} {
		if !isStatic(p) {
			t.Errorf("isStatic(%q) = false", p)
		}
	}
	for _, p := range []string{"/core1/select", "/core1/update/json", "/a.jpeg", "/a.css/"} {
		if isStatic(p) {
			t.Errorf("isStatic(%q) = true", p)
		}
	}
}
