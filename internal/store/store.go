// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package store is the DuckDB persistence adapter. It implements the
// query contracts consumed by the ranking engine: candidate windows,
// text search, the follow graph, viewer tag profiles, and precomputed
// recommendation reads.
//
// All reads run through a circuit breaker. A struggling database trips
// the breaker and requests fail fast instead of piling up on a saturated
// connection pool.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb driver
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrUnavailable wraps breaker rejections so callers can distinguish a
// fast-failed read from a real query error.
var ErrUnavailable = errors.New("store: circuit open")

// Config holds the database connection settings.
type Config struct {
	// Path is the database file; empty means in-memory.
	Path string `koanf:"path" json:"path"`

	// Threads caps DuckDB's internal parallelism; 0 means NumCPU.
	Threads int `koanf:"threads" json:"threads"`

	// MaxMemory is DuckDB's memory ceiling, e.g. "1GB".
	MaxMemory string `koanf:"max_memory" json:"max_memory"`

	// QueryTimeout bounds every read. Default: 5s.
	QueryTimeout time.Duration `koanf:"query_timeout" json:"query_timeout"`
}

// DefaultConfig returns the production store settings.
func DefaultConfig() Config {
	return Config{
		Path:         "data/ladle.db",
		MaxMemory:    "1GB",
		QueryTimeout: 5 * time.Second,
	}
}

// Store is the shared database handle. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	cfg    Config
	logger zerolog.Logger
	cb     *gobreaker.CircuitBreaker[*sql.Rows]
}

// Open connects, configures the pool, and runs migrations.
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	dsn := cfg.Path
	if dsn != "" {
		dsn = fmt.Sprintf("%s?access_mode=read_write&threads=%d", cfg.Path, threads)
		if cfg.MaxMemory != "" {
			dsn += "&max_memory=" + cfg.MaxMemory
		}
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(runtime.NumCPU())
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	s := &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "store").Logger(),
	}
	s.cb = newReadBreaker(s.logger)

	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// newReadBreaker builds the read-path circuit breaker: opens at a 60%
// failure rate over at least 10 requests, probes again after 30s.
func newReadBreaker(logger zerolog.Logger) *gobreaker.CircuitBreaker[*sql.Rows] {
	return gobreaker.NewCircuitBreaker[*sql.Rows](gobreaker.Settings{
		Name:        "store-reads",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}

// query runs a read through the breaker with the configured timeout.
// The returned cancel func must be deferred by the caller alongside
// rows.Close.
func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, context.CancelFunc, error) {
	qctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	rows, err := s.cb.Execute(func() (*sql.Rows, error) {
		return s.db.QueryContext(qctx, q, args...)
	})
	if err != nil {
		cancel()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, nil, err
	}
	return rows, cancel, nil
}

// Ping reports connection liveness, for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
