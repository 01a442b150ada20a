// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/searchgate/internal/logging"
)

const (
	// DefaultGCInterval is how often value log GC runs.
	DefaultGCInterval = 10 * time.Minute

	// gcDiscardRatio is the fraction of stale data a value log file must
	// hold before it is rewritten.
	gcDiscardRatio = 0.5

	// maxGCRounds bounds the rewrites attempted per tick.
	maxGCRounds = 10
)

// ValueLogCollector is satisfied by *badger.DB.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) error
}

// BadgerGCService reclaims value log space left by deleted sessions.
type BadgerGCService struct {
	db       ValueLogCollector
	interval time.Duration
}

// NewBadgerGCService creates the service. A non-positive interval uses
// DefaultGCInterval.
func NewBadgerGCService(db ValueLogCollector, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &BadgerGCService{db: db, interval: interval}
}

// Serve implements suture.Service. An in-memory database has no value log;
// the service then stops for good with suture.ErrDoNotRestart.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done := s.collect(); done {
				return suture.ErrDoNotRestart
			}
		}
	}
}

// collect runs GC rounds until badger reports nothing to rewrite. It returns
// true when GC can never run on this database.
func (s *BadgerGCService) collect() bool {
	for i := 0; i < maxGCRounds; i++ {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			return false
		case errors.Is(err, badger.ErrGCInMemoryMode):
			logging.Info().Msg("Session store is in memory, value log GC disabled")
			return true
		default:
			logging.Warn().Err(err).Msg("Session store value log GC failed")
			return false
		}
	}
	return false
}

func (s *BadgerGCService) String() string {
	return "badger-gc"
}
