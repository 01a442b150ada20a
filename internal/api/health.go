// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/searchgate/internal/metrics"
)

// CoreInventory is the view of the core container the health check needs.
type CoreInventory interface {
	CoreNames() []string
	InitFailures() map[string]string
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status       string            `json:"status"`
	Home         string            `json:"home,omitempty"`
	Cores        []string          `json:"cores"`
	InitFailures map[string]string `json:"init_failures,omitempty"`
	Uptime       float64           `json:"uptime_seconds"`
}

// HealthHandler reports liveness and core inventory.
type HealthHandler struct {
	cores   CoreInventory
	home    string
	started time.Time
}

// NewHealthHandler creates a health handler over cores. home is reported
// verbatim so operators can see whether the fallback home was used.
func NewHealthHandler(cores CoreInventory, home string) *HealthHandler {
	return &HealthHandler{cores: cores, home: home, started: time.Now()}
}

// ServeHTTP answers 200 with status "ok", or 503 with status "degraded" when
// any core failed to initialize.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	names := h.cores.CoreNames()
	failures := h.cores.InitFailures()
	metrics.SetCoreCounts(len(names), len(failures))

	resp := HealthResponse{
		Status:       "ok",
		Home:         h.home,
		Cores:        names,
		InitFailures: failures,
		Uptime:       time.Since(h.started).Seconds(),
	}
	if resp.Cores == nil {
		resp.Cores = []string{}
	}

	status := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
