// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisionsTotal counts per-permission decisions.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_authz_decisions_total",
			Help: "Total number of base permission decisions",
		},
		[]string{"permission", "decision"}, // decision: allow, deny, error
	)

	// AuthzDecisionDuration tracks the latency of a full base permission check.
	AuthzDecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchgate_authz_decision_duration_seconds",
			Help:    "Duration of base permission checks in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)
)

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
	decisionError = "error"
)

func recordDecision(permission, decision string) {
	AuthzDecisionsTotal.WithLabelValues(permission, decision).Inc()
}

func observeCheck(start time.Time) {
	AuthzDecisionDuration.Observe(time.Since(start).Seconds())
}
