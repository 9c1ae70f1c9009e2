// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ckarenz/ladle/internal/metrics"
	"github.com/ckarenz/ladle/internal/models"
)

// Search computes one search page: fuzzy similarity blended with the
// alternate-title bonus and trend, degrading to substring matching when
// the store's similarity function is unavailable.
//
// Result pages are cached keyed on (normalized query, cursor) only.
// Viewer identity deliberately stays out of the key: the ranked list is
// viewer-independent, and per-viewer flags are filled after retrieval.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*models.Page, error) {
	now := e.now()
	limit := e.clampLimit(req.Limit)
	seed := SlotSeed(req.ViewerID, now)

	query := NormalizeQuery(req.Query)
	if query == "" {
		return e.browseByTrend(ctx, req, limit, seed)
	}

	key := searchCacheKey(query, req.Cursor)
	if e.searchCache != nil {
		if v, ok := e.searchCache.Get(key); ok {
			if page, ok := v.(*models.Page); ok {
				metrics.SearchCacheHits.Inc()
				// Hand out a copy: callers enrich items in place with
				// per-viewer flags, and the cached page is shared.
				return page.Clone(), nil
			}
		}
		metrics.SearchCacheMisses.Inc()
	}

	w := Window{Filter: req.Filter, Limit: limit * e.cfg.Oversample}

	var scored []ScoredCandidate
	sims, err := e.store.SearchSimilarity(ctx, query, w)
	switch {
	case err == nil:
		scored = make([]ScoredCandidate, 0, len(sims))
		for i := range sims {
			r := sims[i].Recipe
			alias := ClassifyAlias(r.AltTitle, query)
			scored = append(scored, ScoredCandidate{
				Recipe: r,
				Score:  SearchScore(sims[i].Similarity, alias, r.TrendScore, e.cfg.Search),
			})
		}
	case errors.Is(err, ErrSimilarityUnavailable):
		// Degraded mode: plain substring match ordered by trend. Logged
		// once per request; the caller sees a normal page.
		metrics.SearchDegraded.Inc()
		e.logger.Warn().Str("query", query).Msg("similarity unavailable, substring fallback")
		recipes, serr := e.store.SearchSubstring(ctx, query, w)
		if serr != nil {
			return nil, fmt.Errorf("substring search: %w", serr)
		}
		scored = make([]ScoredCandidate, 0, len(recipes))
		for i := range recipes {
			scored = append(scored, ScoredCandidate{Recipe: recipes[i], Score: recipes[i].TrendScore})
		}
	default:
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	SortScored(scored, seed, -1)
	scored = skipPastScoreCursor(scored, decodeScoreCursor(req.Cursor))
	page := assembleScorePage(scored, limit)

	// A cancelled request must not poison the cache with a page computed
	// from partial reads. The cache keeps its own copy so enrichment on
	// the returned page cannot reach it.
	if e.searchCache != nil && ctx.Err() == nil {
		e.searchCache.Set(key, page.Clone())
	}
	return page, nil
}

// browseByTrend serves the empty-query browse page: a trend-ordered window
// with the trend counter as the score.
func (e *Engine) browseByTrend(ctx context.Context, req SearchRequest, limit int, seed string) (*models.Page, error) {
	cands, err := e.store.Query(ctx, Window{
		Filter: req.Filter,
		Order:  OrderTrend,
		Limit:  limit * e.cfg.Oversample,
	})
	if err != nil {
		return nil, fmt.Errorf("load browse window: %w", err)
	}

	scored := make([]ScoredCandidate, 0, len(cands))
	for i := range cands {
		scored = append(scored, ScoredCandidate{Recipe: cands[i], Score: cands[i].TrendScore})
	}
	SortScored(scored, seed, -1)
	scored = skipPastScoreCursor(scored, decodeScoreCursor(req.Cursor))
	return assembleScorePage(scored, limit), nil
}

// NormalizeQuery lowercases, trims, and collapses internal whitespace.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func searchCacheKey(query, cursor string) string {
	return "search:" + query + "|" + cursor
}
