// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package main is the entry point for the Ladle ranking server.
//
// Ladle serves the discovery surfaces of a social recipe platform: the
// personalized home feed, popular and recommended listings, and hybrid
// search. Recipes, follows, and reactions live in an embedded DuckDB
// database; the ranking engine reads candidate windows from it and
// blends them per request.
//
// # Startup order
//
//  1. Configuration: koanf layers defaults, config.yaml, and LADLE_*
//     environment variables
//  2. Logging: zerolog, configured from the logging section
//  3. Database: DuckDB open + migrations
//  4. Ranking engine: candidate loading, scoring, interleaving
//  5. Supervisor tree: HTTP server and the trend refresh job
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the trend job stops at the next tick, and the
// database is closed last.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/ckarenz/ladle/internal/api"
	"github.com/ckarenz/ladle/internal/cache"
	"github.com/ckarenz/ladle/internal/config"
	"github.com/ckarenz/ladle/internal/logging"
	"github.com/ckarenz/ladle/internal/ranking"
	"github.com/ckarenz/ladle/internal/store"
	"github.com/ckarenz/ladle/internal/trend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging)
	logger := logging.Logger()

	logger.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Bool("trend_job", cfg.Trend.Enabled).
		Msg("starting ladle")

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing database")
		}
	}()

	searchCache := cache.New(cfg.SearchCache)
	defer searchCache.Close()

	// The store backs every engine dependency: candidate windows, the
	// follow graph, reaction profiles, and precomputed recommendations.
	engine, err := ranking.NewEngine(db, db, db, db, searchCache, cfg.Ranking, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build ranking engine")
	}

	handlers := api.NewHandlers(engine, db, db)
	router := api.NewRouter(handlers, api.RouterConfig{
		Timeout:         cfg.Server.Timeout,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sutureslog wants slog; bridge it to the zerolog pipeline.
	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()
	tree := suture.New("ladle", suture.Spec{
		EventHook:        hook,
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})

	tree.Add(newHTTPService(server, 10*time.Second))
	logger.Info().Str("addr", server.Addr).Msg("http server added to supervisor")

	if cfg.Trend.Enabled {
		tree.Add(trend.NewRefresher(db, cfg.Trend.Interval, logger))
		logger.Info().Dur("interval", cfg.Trend.Interval).Msg("trend refresh job added to supervisor")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("supervisor error")
		}
	}

	logger.Info().Msg("ladle stopped")
}
