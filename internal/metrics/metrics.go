// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package metrics registers the Prometheus instrumentation for the
// ranking service: request latency and volume, ranking pipeline
// behavior, cache efficiency, and the trend refresh job.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladle_api_requests_total",
			Help: "Total API requests by endpoint, method, and status code",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ladle_api_request_duration_seconds",
			Help:    "API request latency by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Ranking pipeline metrics
	RankingCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ladle_ranking_candidates",
			Help:    "Candidate window sizes fed into ranking, per feed",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800},
		},
		[]string{"feed"},
	)

	RecommendStrategy = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladle_recommend_strategy_total",
			Help: "Recommendation pages served, by fallback strategy",
		},
		[]string{"strategy"},
	)

	PopularityWindowWidened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladle_popularity_window_widened_total",
			Help: "Popular feed requests that needed the wide candidate window",
		},
	)

	SearchDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladle_search_degraded_total",
			Help: "Search requests served via substring fallback",
		},
	)

	// Search cache metrics
	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladle_search_cache_hits_total",
			Help: "Search page cache hits",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladle_search_cache_misses_total",
			Help: "Search page cache misses",
		},
	)

	// Trend job metrics
	TrendRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ladle_trend_refresh_duration_seconds",
			Help:    "Duration of trend score refresh runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60},
		},
	)

	TrendRefreshErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladle_trend_refresh_errors_total",
			Help: "Failed trend score refresh runs",
		},
	)
)

// RecordAPIRequest updates the request counter and latency histogram.
func RecordAPIRequest(endpoint, method string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
