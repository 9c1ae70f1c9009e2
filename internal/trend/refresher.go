// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package trend runs the background trend score refresh as a supervised
// service. The ranking engine treats trend_score as externally
// maintained data; this job is the maintainer.
package trend

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ckarenz/ladle/internal/metrics"
)

// TrendStore is the store surface the refresher needs.
type TrendStore interface {
	RefreshTrendScores(ctx context.Context, now time.Time) (int64, error)
}

// Refresher recomputes trend scores on a fixed cadence. It implements
// suture.Service; a panic or persistent failure gets it restarted by the
// supervisor with backoff.
type Refresher struct {
	store    TrendStore
	interval time.Duration
	logger   zerolog.Logger
}

// NewRefresher builds the service.
func NewRefresher(store TrendStore, interval time.Duration, logger zerolog.Logger) *Refresher {
	return &Refresher{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "trend").Logger(),
	}
}

// Serve runs until the context is canceled. The limiter paces runs at
// the configured interval; the first run fires immediately on startup so
// a fresh deployment doesn't serve stale trend data for a full period.
func (r *Refresher) Serve(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(r.interval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		start := time.Now()
		n, err := r.store.RefreshTrendScores(ctx, start)
		if err != nil {
			metrics.TrendRefreshErrors.Inc()
			r.logger.Error().Err(err).Msg("trend refresh failed")
			continue
		}
		metrics.TrendRefreshDuration.Observe(time.Since(start).Seconds())
		r.logger.Debug().
			Int64("rows", n).
			Dur("took", time.Since(start)).
			Msg("trend scores refreshed")
	}
}

// String identifies the service in supervisor logs.
func (r *Refresher) String() string {
	return "trend-refresher"
}
