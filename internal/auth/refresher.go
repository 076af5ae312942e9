// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RefreshFunc exchanges the current refresh token for a new credential
// pair. The API client provides the implementation; keeping it as a
// function avoids a dependency cycle between this package and the client.
type RefreshFunc func(ctx context.Context) error

// Refresher renews the credential pair on a fixed interval while the
// application is running.
type Refresher struct {
	store    *Store
	interval time.Duration
	refresh  RefreshFunc
	log      *zap.Logger
}

// NewRefresher creates a refresher that calls fn every interval.
func NewRefresher(store *Store, interval time.Duration, fn RefreshFunc, log *zap.Logger) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{store: store, interval: interval, refresh: fn, log: log}
}

// Run blocks until ctx is cancelled, refreshing the token pair on each
// tick. A failed refresh is logged and retried on the next tick; the
// existing pair stays in place so the session keeps working until the
// access token actually expires.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.store.Authenticated() {
				continue
			}
			if err := r.refresh(ctx); err != nil {
				r.log.Warn("token refresh failed", zap.Error(err))
				continue
			}
			r.log.Debug("token pair refreshed")
		}
	}
}
