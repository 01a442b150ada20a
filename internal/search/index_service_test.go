// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/searchgate/internal/metrics"
)

func newService(t *testing.T, cores ...string) *IndexService {
	t.Helper()
	return NewIndexService(newContainer(t, cores...))
}

func TestDocument_ID(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		want    string
		wantErr bool
	}{
		{"string", Document{"id": "GZ-1006"}, "GZ-1006", false},
		{"trimmed", Document{"id": "  GZ-1005 "}, "GZ-1005", false},
		{"float", Document{"id": float64(42)}, "42", false},
		{"int", Document{"id": 7}, "7", false},
		{"missing", Document{"title": "x"}, "", true},
		{"blank", Document{"id": "  "}, "", true},
		{"wrong type", Document{"id": []string{"a"}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.doc.ID()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrMissingID) {
				t.Errorf("ID() error = %v, want ErrMissingID", err)
			}
			if got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIndexService_AddToIndex(t *testing.T) {
	svc := newService(t, "products")
	ctx := context.Background()

	if err := svc.AddToIndex(ctx, "products", Document{"id": "GZ-1006", "name": "Giant Widget", "category": "102"}); err != nil {
		t.Fatalf("AddToIndex() error = %v", err)
	}

	res, err := svc.Search(ctx, "products", Query{Filters: []string{"category:102"}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.NumFound != 1 || res.Docs[0]["id"] != "GZ-1006" {
		t.Errorf("Search() = %+v", res)
	}
	if res.Docs[0]["name"] != "Giant Widget" {
		t.Errorf("stored field name = %v", res.Docs[0]["name"])
	}

	core, _ := svc.container.Core("products")
	if core.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", core.Generation())
	}
}

func TestIndexService_AddToIndexErrors(t *testing.T) {
	svc := newService(t, "products")
	ctx := context.Background()

	if err := svc.AddToIndex(ctx, "products", Document{"name": "no id"}); !errors.Is(err, ErrMissingID) {
		t.Errorf("AddToIndex() error = %v, want ErrMissingID", err)
	}
	core, err := svc.container.Core("products")
	if err != nil {
		t.Fatalf("Core() error = %v", err)
	}
	if st := core.Status(); st.Version != 0 || st.NumDocs != 0 {
		t.Errorf("rejected document changed the core: %+v", st)
	}
	report, err := svc.AddListToIndex(ctx, "products", []Document{{"name": "no id"}})
	if err != nil || report.Skipped != 1 || report.Indexed != 0 {
		t.Errorf("AddListToIndex() = %+v, %v; want one skipped", report, err)
	}
	if err := svc.AddToIndex(ctx, "nope", Document{"id": "1"}); !errors.Is(err, ErrCoreNotFound) {
		t.Errorf("AddToIndex() error = %v, want ErrCoreNotFound", err)
	}
}

func TestIndexService_AddListToIndex(t *testing.T) {
	svc := newService(t, "products")
	ctx := context.Background()

	indexed := metrics.DocumentsIndexed.WithLabelValues("products")
	skipped := metrics.DocumentsSkipped.WithLabelValues("products")
	beforeIndexed, beforeSkipped := testutil.ToFloat64(indexed), testutil.ToFloat64(skipped)

	report, err := svc.AddListToIndex(ctx, "products", []Document{
		{"id": "GZ-1006", "name": "Giant Widget"},
		{"id": "GZ-1005", "name": "Purple Gizmo"},
		{"name": "invalid, no id"},
	})
	if err != nil {
		t.Fatalf("AddListToIndex() error = %v", err)
	}
	if report.Indexed != 2 || report.Skipped != 1 {
		t.Errorf("report = %+v, want 2 indexed 1 skipped", report)
	}
	if got := testutil.ToFloat64(indexed) - beforeIndexed; got != 2 {
		t.Errorf("indexed metric delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(skipped) - beforeSkipped; got != 1 {
		t.Errorf("skipped metric delta = %v, want 1", got)
	}

	res, err := svc.Search(ctx, "products", Query{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.NumFound != 2 {
		t.Errorf("NumFound = %d, want 2", res.NumFound)
	}
}

func TestIndexService_AddListToIndexAllInvalid(t *testing.T) {
	svc := newService(t, "products")

	report, err := svc.AddListToIndex(context.Background(), "products", []Document{{"x": 1}, {"y": 2}})
	if err != nil {
		t.Fatalf("AddListToIndex() error = %v", err)
	}
	if report.Indexed != 0 || report.Skipped != 2 {
		t.Errorf("report = %+v", report)
	}
	core, _ := svc.container.Core("products")
	if core.Generation() != 0 {
		t.Error("empty batch must not bump the generation")
	}
}

func TestIndexService_ApplyDeletes(t *testing.T) {
	svc := newService(t, "products")
	ctx := context.Background()

	if _, err := svc.AddListToIndex(ctx, "products", []Document{{"id": "a"}, {"id": "b"}}); err != nil {
		t.Fatalf("AddListToIndex() error = %v", err)
	}
	report, err := svc.Apply(ctx, "products", nil, []string{"a", " "})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if report.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", report.Deleted)
	}
	res, _ := svc.Search(ctx, "products", Query{Text: "*:*"})
	if res.NumFound != 1 || res.Docs[0]["id"] != "b" {
		t.Errorf("remaining docs = %+v", res.Docs)
	}
}

func TestIndexService_Search(t *testing.T) {
	svc := newService(t, "products")
	ctx := context.Background()

	docs := []Document{
		{"id": "1", "name": "red apple", "category": "fruit"},
		{"id": "2", "name": "green apple", "category": "fruit"},
		{"id": "3", "name": "red brick", "category": "building"},
	}
	if _, err := svc.AddListToIndex(ctx, "products", docs); err != nil {
		t.Fatalf("AddListToIndex() error = %v", err)
	}

	tests := []struct {
		name      string
		q         Query
		wantFound uint64
		wantDocs  int
	}{
		{"match all", Query{Text: "*:*"}, 3, 3},
		{"text", Query{Text: "apple"}, 2, 2},
		{"field query", Query{Text: "name:brick"}, 1, 1},
		{"text plus filter", Query{Text: "red", Filters: []string{"category:fruit"}}, 1, 1},
		{"wildcard filter ignored", Query{Filters: []string{"category:*"}}, 3, 3},
		{"paging", Query{Start: 1, Rows: 1}, 3, 1},
		{"rows capped by max_rows", Query{Rows: 500}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Search(ctx, "products", tt.q)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if res.NumFound != tt.wantFound {
				t.Errorf("NumFound = %d, want %d", res.NumFound, tt.wantFound)
			}
			if len(res.Docs) != tt.wantDocs {
				t.Errorf("len(Docs) = %d, want %d", len(res.Docs), tt.wantDocs)
			}
		})
	}
}

func TestIndexService_SearchFieldList(t *testing.T) {
	svc := newService(t, "products")
	ctx := context.Background()
	if err := svc.AddToIndex(ctx, "products", Document{"id": "1", "name": "n", "secret": "s"}); err != nil {
		t.Fatalf("AddToIndex() error = %v", err)
	}

	res, err := svc.Search(ctx, "products", Query{Fields: []string{"name"}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	doc := res.Docs[0]
	if _, ok := doc["secret"]; ok {
		t.Error("fl should restrict returned fields")
	}
	if doc["id"] != "1" || doc["name"] != "n" {
		t.Errorf("doc = %v", doc)
	}
}

func TestIndexService_SearchErrors(t *testing.T) {
	svc := newService(t, "products")
	ctx := context.Background()

	if _, err := svc.Search(ctx, "products", Query{Text: "name:>"}); !errors.Is(err, ErrBadQuery) {
		t.Errorf("Search() error = %v, want ErrBadQuery", err)
	}
	if _, err := svc.Search(ctx, "products", Query{Filters: []string{"nocolon"}}); !errors.Is(err, ErrBadQuery) {
		t.Errorf("Search() error = %v, want ErrBadQuery", err)
	}
	if _, err := svc.Search(ctx, "missing", Query{}); !errors.Is(err, ErrCoreNotFound) {
		t.Errorf("Search() error = %v, want ErrCoreNotFound", err)
	}

	before := testutil.ToFloat64(metrics.SearchQueries.WithLabelValues("products", "error"))
	_, _ = svc.Search(ctx, "products", Query{Text: "name:>"})
	if got := testutil.ToFloat64(metrics.SearchQueries.WithLabelValues("products", "error")); got != before+1 {
		t.Errorf("error query metric = %v, want %v", got, before+1)
	}
}
