// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordGuardDeny(t *testing.T) {
	before := testutil.ToFloat64(GuardDenials.WithLabelValues("update", "403"))
	beforeDecisions := testutil.ToFloat64(GuardDecisions.WithLabelValues("update", "deny"))

	RecordGuardDeny("update", 403)

	if got := testutil.ToFloat64(GuardDenials.WithLabelValues("update", "403")); got != before+1 {
		t.Errorf("denials = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(GuardDecisions.WithLabelValues("update", "deny")); got != beforeDecisions+1 {
		t.Errorf("decisions = %v, want %v", got, beforeDecisions+1)
	}
}

func TestRecordGuardAllow(t *testing.T) {
	before := testutil.ToFloat64(GuardDecisions.WithLabelValues("other", "allow"))
	RecordGuardAllow("other")
	if got := testutil.ToFloat64(GuardDecisions.WithLabelValues("other", "allow")); got != before+1 {
		t.Errorf("allow decisions = %v, want %v", got, before+1)
	}
}

func TestRecordSearch(t *testing.T) {
	okBefore := testutil.ToFloat64(SearchQueries.WithLabelValues("metrics-core", "ok"))
	errBefore := testutil.ToFloat64(SearchQueries.WithLabelValues("metrics-core", "error"))

	RecordSearch("metrics-core", nil)
	RecordSearch("metrics-core", errors.New("boom"))

	if got := testutil.ToFloat64(SearchQueries.WithLabelValues("metrics-core", "ok")); got != okBefore+1 {
		t.Errorf("ok = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(SearchQueries.WithLabelValues("metrics-core", "error")); got != errBefore+1 {
		t.Errorf("error = %v, want %v", got, errBefore+1)
	}
}

func TestRecordIndexed(t *testing.T) {
	RecordIndexed("idx-core", 3, 2)
	RecordIndexed("idx-core", 0, 0)

	if got := testutil.ToFloat64(DocumentsIndexed.WithLabelValues("idx-core")); got != 3 {
		t.Errorf("indexed = %v, want 3", got)
	}
	if got := testutil.ToFloat64(DocumentsSkipped.WithLabelValues("idx-core")); got != 2 {
		t.Errorf("skipped = %v, want 2", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	RecordHTTPRequest("GET", "/healthz", 200, 5*time.Millisecond)
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")); got != before+1 {
		t.Errorf("requests = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestSetCoreCounts(t *testing.T) {
	SetCoreCounts(4, 1)
	if got := testutil.ToFloat64(CoresLoaded); got != 4 {
		t.Errorf("cores loaded = %v, want 4", got)
	}
	if got := testutil.ToFloat64(CoreInitFailures); got != 1 {
		t.Errorf("init failures = %v, want 1", got)
	}
}
