// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/metrics"
	"github.com/ckarenz/ladle/internal/models"
)

// The recommended feed runs a fallback chain, best source first:
//
//  1. precomputed: the active model's ranked list, hydrated against live
//     visibility. Skipped when no model is active, the viewer has no rows,
//     or the read fails.
//  2. heuristic: the online recommendation score over a recency window.
//     Viewers without signal (thin graph, no tag signal, or no viewer at
//     all) get a trend-heavy cold-start blend instead of the raw
//     heuristic. A thin heuristic page is topped up with popularity items.
//  3. popularity: the last resort when the recency window itself is empty.
//
// A strategy handing back zero candidates falls through to the next; the
// chain always produces a page as long as the store is reachable.

// recommendStrategy names one source in the chain.
type recommendStrategy string

const (
	strategyPrecomputed recommendStrategy = "precomputed"
	strategyHeuristic   recommendStrategy = "heuristic"
	strategyColdStart   recommendStrategy = "cold_start"
	strategyPopularity  recommendStrategy = "popularity"
)

// Recommended computes one personalized feed page via the fallback chain.
func (e *Engine) Recommended(ctx context.Context, req RecommendRequest) (*models.Page, error) {
	now := e.now()
	limit := e.clampLimit(req.Limit)
	seed := SlotSeed(req.ViewerID, now)

	var (
		scored   []ScoredCandidate
		strategy = strategyPopularity
	)

	if req.ViewerID != nil {
		pc, err := e.precomputedScored(ctx, *req.ViewerID)
		if err != nil {
			// Model output is an optimization, never a hard dependency.
			e.logger.Warn().Err(err).Str("viewer_id", req.ViewerID.String()).
				Msg("precomputed recommendations unavailable, falling back")
		}
		if len(pc) > 0 {
			scored, strategy = pc, strategyPrecomputed
		}
	}

	if len(scored) == 0 {
		h, cold, err := e.heuristicScored(ctx, req.ViewerID, limit, now, seed)
		if err != nil {
			return nil, err
		}
		if len(h) > 0 {
			scored, strategy = h, strategyHeuristic
			if cold {
				strategy = strategyColdStart
			}
		}
	}

	if len(scored) == 0 {
		pop, err := e.popularScored(ctx, Filter{}, limit, now, seed)
		if err != nil {
			return nil, err
		}
		scored, strategy = pop, strategyPopularity
	} else if len(scored) < limit && strategy != strategyPrecomputed {
		topped, err := e.topUpWithPopularity(ctx, scored, limit, now, seed)
		if err != nil {
			// Partial page beats an error here.
			e.logger.Warn().Err(err).Msg("popularity top-up failed, serving short page")
		} else {
			scored = topped
		}
	}

	scored = skipPastScoreCursor(scored, decodeScoreCursor(req.Cursor))
	page := assembleScorePage(scored, limit)

	metrics.RecommendStrategy.WithLabelValues(string(strategy)).Inc()
	e.logger.Debug().
		Str("strategy", string(strategy)).
		Int("returned", len(page.Items)).
		Msg("recommended feed computed")
	return page, nil
}

// precomputedScored reads the active model's list for the viewer and
// hydrates it against live candidate rows. The model's ordering and
// scores are preserved; ids that are gone or hidden drop out silently.
func (e *Engine) precomputedScored(ctx context.Context, viewerID uuid.UUID) ([]ScoredCandidate, error) {
	modelID, err := e.recs.ActiveModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("read active model: %w", err)
	}
	if modelID == "" {
		return nil, nil
	}

	rows, err := e.recs.RecommendationsFor(ctx, viewerID, modelID)
	if err != nil {
		return nil, fmt.Errorf("read recommendations for model %s: %w", modelID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		id, perr := uuid.Parse(row.RecipeID)
		if perr != nil {
			continue
		}
		ids = append(ids, id)
	}

	recipes, err := e.store.QueryByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate recommendations: %w", err)
	}
	byID := make(map[string]models.Recipe, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID.String()] = recipes[i]
	}

	scored := make([]ScoredCandidate, 0, len(rows))
	for _, row := range rows {
		r, ok := byID[row.RecipeID]
		if !ok {
			continue
		}
		scored = append(scored, ScoredCandidate{Recipe: r, Score: row.Score})
	}
	return scored, nil
}

// heuristicScored computes the online recommendation ranking. A nil viewer
// carries no signal, so the graph and tag lookups are skipped and the cold
// path applies. The second return reports cold start: the trend-blended
// variant was used.
func (e *Engine) heuristicScored(ctx context.Context, viewerID *uuid.UUID, limit int, now time.Time, seed string) ([]ScoredCandidate, bool, error) {
	var (
		followIDs []uuid.UUID
		preferred map[string]struct{}
	)
	if viewerID != nil {
		var err error
		followIDs, err = e.follows.FollowingIDs(ctx, *viewerID)
		if err != nil {
			return nil, false, fmt.Errorf("load following ids: %w", err)
		}
		preferred, err = e.preferredTags(ctx, *viewerID)
		if err != nil {
			return nil, false, err
		}
	}
	followSet := make(map[uuid.UUID]struct{}, len(followIDs))
	for _, id := range followIDs {
		followSet[id] = struct{}{}
	}

	cands, err := e.store.Query(ctx, Window{
		Order: OrderRecency,
		Limit: limit * e.cfg.Oversample,
	})
	if err != nil {
		return nil, false, fmt.Errorf("load recommendation window: %w", err)
	}

	rc := RecommendContext{PreferredTags: preferred}
	scored := make([]ScoredCandidate, 0, len(cands))
	for i := range cands {
		r := cands[i]
		if _, ok := followSet[r.AuthorID]; ok {
			r.IsFollowedAuthor = true
		}
		scored = append(scored, ScoredCandidate{Recipe: r, Score: RecommendScore(&r, now, rc, e.cfg.Recommend)})
	}
	SortScored(scored, seed, -1)

	cold := len(followIDs) < e.cfg.SparseFollowThreshold && len(preferred) == 0
	if !cold {
		return scored, false, nil
	}

	// Cold start: no personal signal to rank on, so lean on what the rest
	// of the platform is engaging with, mixed with the weak heuristic.
	trend := make([]ScoredCandidate, 0, len(cands))
	for i := range cands {
		if cands[i].TrendScore > 0 {
			trend = append(trend, ScoredCandidate{Recipe: cands[i], Score: cands[i].TrendScore})
		}
	}
	SortScored(trend, seed, -1)

	icfg := e.cfg.Interleave
	icfg.TargetPrimaryRatio = e.cfg.ColdStartTrendRatio
	blended := Interleave(trend, scored, limit*e.cfg.Oversample, now, icfg, InterleaveOptions{
		Sparse:      true,
		Exploration: ExplorationPool(scored, now, icfg, seed),
		Seed:        seed,
	})
	return blended, true, nil
}

// preferredTags unions the viewer's liked and saved tags, lowercased.
func (e *Engine) preferredTags(ctx context.Context, viewerID uuid.UUID) (map[string]struct{}, error) {
	liked, err := e.profiles.LikedTags(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load liked tags: %w", err)
	}
	saved, err := e.profiles.SavedTags(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load saved tags: %w", err)
	}

	preferred := make(map[string]struct{}, len(liked)+len(saved))
	for _, t := range liked {
		preferred[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range saved {
		preferred[strings.ToLower(t)] = struct{}{}
	}
	return preferred, nil
}

// topUpWithPopularity appends popularity-ranked items absent from the
// short result until it reaches limit or popularity runs out.
func (e *Engine) topUpWithPopularity(ctx context.Context, scored []ScoredCandidate, limit int, now time.Time, seed string) ([]ScoredCandidate, error) {
	pop, err := e.popularScored(ctx, Filter{}, limit, now, seed)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(scored))
	for i := range scored {
		seen[scored[i].Recipe.ID] = struct{}{}
	}
	for _, c := range pop {
		if len(scored) >= limit {
			break
		}
		if _, dup := seen[c.Recipe.ID]; dup {
			continue
		}
		seen[c.Recipe.ID] = struct{}{}
		scored = append(scored, c)
	}
	return scored, nil
}
