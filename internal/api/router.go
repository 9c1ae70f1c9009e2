// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ckarenz/ladle/internal/logging"
	"github.com/ckarenz/ladle/internal/metrics"
)

// RouterConfig holds the HTTP-level settings.
type RouterConfig struct {
	Timeout         time.Duration
	RateLimitReqs   int
	RateLimitWindow time.Duration
	CORSOrigins     []string
}

// NewRouter assembles the chi router: request id + logging context,
// panic recovery, rate limiting, CORS, metrics, and the v1 routes.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if cfg.Timeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Timeout))
	}
	if cfg.RateLimitReqs > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", ViewerHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metricsMiddleware)
		r.Get("/feed", h.HomeFeed)
		r.Get("/recipes/popular", h.Popular)
		r.Get("/recipes/recommended", h.Recommended)
		r.Get("/search", h.Search)
	})

	return r
}

// requestIDMiddleware attaches a request id to the context and echoes it
// back so clients can reference it in bug reports.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}
		ctx := logging.ContextWithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// metricsMiddleware records per-endpoint request counts and latency.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		metrics.RecordAPIRequest(endpoint, r.Method, ww.Status(), time.Since(start))
	})
}
