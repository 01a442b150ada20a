// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package services

import (
	"context"
	"time"

	"github.com/tomtom215/searchgate/internal/logging"
	"github.com/tomtom215/searchgate/internal/metrics"
)

// DefaultCleanupInterval is used when no interval is configured.
const DefaultCleanupInterval = 5 * time.Minute

// ExpiredSessionCleaner is satisfied by every auth.SessionStore.
type ExpiredSessionCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionCleanupService removes expired sessions on a fixed interval.
//
// A failed sweep is logged and retried on the next tick rather than
// returned, so a transient store error does not count against the
// supervisor's failure threshold.
type SessionCleanupService struct {
	store    ExpiredSessionCleaner
	interval time.Duration
}

// NewSessionCleanupService creates the service. A non-positive interval uses
// DefaultCleanupInterval.
func NewSessionCleanupService(store ExpiredSessionCleaner, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &SessionCleanupService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionCleanupService) sweep(ctx context.Context) {
	removed, err := s.store.CleanupExpired(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Session cleanup failed")
		return
	}
	if removed > 0 {
		metrics.SessionsExpired.Add(float64(removed))
		logging.Debug().Int("removed", removed).Msg("Expired sessions removed")
	}
}

func (s *SessionCleanupService) String() string {
	return "session-cleanup"
}
