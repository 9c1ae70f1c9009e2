// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package api exposes the ranking engine over HTTP: the home feed,
// popular and recommended listings, and search.
//
// Authentication is handled upstream; the gateway injects the verified
// viewer identity as the X-Viewer-ID header. A missing header means an
// anonymous request, a malformed one is a client error.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/logging"
	"github.com/ckarenz/ladle/internal/models"
	"github.com/ckarenz/ladle/internal/ranking"
	"github.com/ckarenz/ladle/internal/store"
)

// ViewerHeader carries the gateway-verified viewer id.
const ViewerHeader = "X-Viewer-ID"

// Ranker is the engine surface the handlers consume.
type Ranker interface {
	HomeFeed(ctx context.Context, req ranking.FeedRequest) (*models.Page, error)
	Popular(ctx context.Context, req ranking.PopularRequest) (*models.Page, error)
	Recommended(ctx context.Context, req ranking.RecommendRequest) (*models.Page, error)
	Search(ctx context.Context, req ranking.SearchRequest) (*models.Page, error)
}

// Enricher fills viewer-relative flags onto a ranked page.
type Enricher interface {
	ViewerFlags(ctx context.Context, viewerID uuid.UUID, recipeIDs []uuid.UUID) (liked, saved map[uuid.UUID]bool, err error)
}

// HealthChecker reports store liveness for the health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	ranker   Ranker
	enricher Enricher
	health   HealthChecker
}

// NewHandlers wires the handler set. enricher may be nil; pages are then
// served without viewer flags.
func NewHandlers(ranker Ranker, enricher Enricher, health HealthChecker) *Handlers {
	return &Handlers{ranker: ranker, enricher: enricher, health: health}
}

// HomeFeed serves GET /api/v1/feed.
func (h *Handlers) HomeFeed(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(w, r)
	if !ok {
		return
	}

	req := ranking.FeedRequest{
		ViewerID:       viewer,
		Limit:          intParam(r, "limit"),
		Cursor:         r.URL.Query().Get("cursor"),
		Filter:         filterParams(r),
		FollowingBoost: r.URL.Query().Get("following_boost") == "true",
	}

	start := time.Now()
	page, err := h.ranker.HomeFeed(r.Context(), req)
	if err != nil {
		h.rankingError(w, r, "feed", err)
		return
	}
	h.enrich(r.Context(), viewer, page)
	respondOK(w, page, time.Since(start))
}

// Popular serves GET /api/v1/recipes/popular.
func (h *Handlers) Popular(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(w, r)
	if !ok {
		return
	}

	req := ranking.PopularRequest{
		ViewerID: viewer,
		Limit:    intParam(r, "limit"),
		Cursor:   r.URL.Query().Get("cursor"),
		Filter:   filterParams(r),
	}

	start := time.Now()
	page, err := h.ranker.Popular(r.Context(), req)
	if err != nil {
		h.rankingError(w, r, "popular", err)
		return
	}
	h.enrich(r.Context(), viewer, page)
	respondOK(w, page, time.Since(start))
}

// Recommended serves GET /api/v1/recipes/recommended.
func (h *Handlers) Recommended(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(w, r)
	if !ok {
		return
	}

	req := ranking.RecommendRequest{
		ViewerID: viewer,
		Limit:    intParam(r, "limit"),
		Cursor:   r.URL.Query().Get("cursor"),
	}

	start := time.Now()
	page, err := h.ranker.Recommended(r.Context(), req)
	if err != nil {
		h.rankingError(w, r, "recommended", err)
		return
	}
	h.enrich(r.Context(), viewer, page)
	respondOK(w, page, time.Since(start))
}

// Search serves GET /api/v1/search.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(w, r)
	if !ok {
		return
	}

	req := ranking.SearchRequest{
		ViewerID: viewer,
		Query:    r.URL.Query().Get("q"),
		Limit:    intParam(r, "limit"),
		Cursor:   r.URL.Query().Get("cursor"),
		Filter:   filterParams(r),
	}

	start := time.Now()
	page, err := h.ranker.Search(r.Context(), req)
	if err != nil {
		h.rankingError(w, r, "search", err)
		return
	}
	h.enrich(r.Context(), viewer, page)
	respondOK(w, page, time.Since(start))
}

// Health serves GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "STORE_DOWN", "database unreachable")
			return
		}
	}
	respondOK(w, map[string]string{"status": "ok"}, 0)
}

// enrich fills liked/saved flags. Best effort: an enrichment failure is
// logged and the page goes out without flags.
func (h *Handlers) enrich(ctx context.Context, viewer *uuid.UUID, page *models.Page) {
	if h.enricher == nil || viewer == nil || len(page.Items) == 0 {
		return
	}
	liked, saved, err := h.enricher.ViewerFlags(ctx, *viewer, page.IDs())
	if err != nil {
		logger := logging.Ctx(ctx)
		logger.Warn().Err(err).Msg("viewer flag enrichment failed")
		return
	}
	for i := range page.Items {
		id := page.Items[i].Recipe.ID
		page.Items[i].IsLiked = liked[id]
		page.Items[i].IsSaved = saved[id]
	}
}

// rankingError maps engine errors to status codes.
func (h *Handlers) rankingError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	logger := logging.Ctx(r.Context())
	logger.Error().Err(err).Str("endpoint", endpoint).Msg("ranking request failed")

	switch {
	case errors.Is(err, store.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "ranking temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "TIMEOUT", "ranking timed out")
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// viewerID parses the X-Viewer-ID header. ok=false means the error
// response was already written.
func viewerID(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.Header.Get(ViewerHeader)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_VIEWER_ID", "X-Viewer-ID must be a UUID")
		return nil, false
	}
	return &id, true
}

// intParam returns the query parameter as a non-negative int, 0 when
// absent or malformed. The engine applies defaults and clamping.
func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// filterParams reads the shared candidate filters.
func filterParams(r *http.Request) ranking.Filter {
	q := r.URL.Query()
	return ranking.Filter{
		Tag:                q.Get("tag"),
		Difficulty:         q.Get("difficulty"),
		MaxDurationMinutes: intParam(r, "max_duration"),
	}
}
