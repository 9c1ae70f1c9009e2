// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ckarenz/ladle/internal/metrics"
	"github.com/ckarenz/ladle/internal/models"
)

// Config holds the engine's operational settings and score weights.
type Config struct {
	// DefaultPageSize / MaxPageSize clamp the requested limit.
	DefaultPageSize int `koanf:"default_page_size" json:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size" json:"max_page_size"`

	// Oversample multiplies the page size into the store window, leaving
	// room for post-filtering, deduplication, and diversity rejection.
	// Typical 5-10.
	Oversample int `koanf:"oversample" json:"oversample"`

	// PopularityWindow is the first candidate window for the popular
	// feed; PopularityWindowWide is the silent widening retry. Defaults:
	// 7 and 30 days.
	PopularityWindow     time.Duration `koanf:"popularity_window" json:"popularity_window"`
	PopularityWindowWide time.Duration `koanf:"popularity_window_wide" json:"popularity_window_wide"`

	// FreshAge bounds the "new" count reported on feed pages. Default: 24h.
	FreshAge time.Duration `koanf:"fresh_age" json:"fresh_age"`

	// ColdStartTrendRatio is the trend share of the cold-start blend.
	// Default: 0.6.
	ColdStartTrendRatio float64 `koanf:"cold_start_trend_ratio" json:"cold_start_trend_ratio"`

	Popularity PopularityWeights `koanf:"popularity" json:"popularity"`
	Feed       FeedWeights       `koanf:"feed" json:"feed"`
	Recommend  RecommendWeights  `koanf:"recommend" json:"recommend"`
	Search     SearchWeights     `koanf:"search" json:"search"`
	Interleave InterleaveConfig  `koanf:"interleave" json:"interleave"`

	// FeedFollowingRatio is the target following share of a feed page.
	// Default: 0.6.
	FeedFollowingRatio float64 `koanf:"feed_following_ratio" json:"feed_following_ratio"`

	// SparseFollowThreshold marks a viewer's graph as sparse below this
	// many follows. Default: 3.
	SparseFollowThreshold int `koanf:"sparse_follow_threshold" json:"sparse_follow_threshold"`
}

// DefaultConfig returns the production engine configuration.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize:       20,
		MaxPageSize:           100,
		Oversample:            8,
		PopularityWindow:      7 * 24 * time.Hour,
		PopularityWindowWide:  30 * 24 * time.Hour,
		FreshAge:              24 * time.Hour,
		ColdStartTrendRatio:   0.6,
		Popularity:            DefaultPopularityWeights(),
		Feed:                  DefaultFeedWeights(),
		Recommend:             DefaultRecommendWeights(),
		Search:                DefaultSearchWeights(),
		Interleave:            DefaultInterleaveConfig(),
		FeedFollowingRatio:    0.6,
		SparseFollowThreshold: 3,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DefaultPageSize <= 0 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("page sizes invalid: default %d, max %d", c.DefaultPageSize, c.MaxPageSize)
	}
	if c.Oversample < 1 {
		return fmt.Errorf("oversample must be >= 1, got %d", c.Oversample)
	}
	if c.PopularityWindow <= 0 || c.PopularityWindowWide < c.PopularityWindow {
		return fmt.Errorf("popularity windows invalid: %v, wide %v", c.PopularityWindow, c.PopularityWindowWide)
	}
	for _, err := range []error{
		c.Popularity.Validate(), c.Feed.Validate(), c.Recommend.Validate(), c.Search.Validate(),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Engine is the ranking engine. It holds no per-request state and is safe
// for concurrent use; the injected search cache is its only shared
// mutable state.
type Engine struct {
	store    CandidateStore
	follows  FollowGraph
	profiles ProfileStore
	recs     RecommendationStore

	searchCache ResultCache

	cfg    Config
	logger zerolog.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewEngine constructs the engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store CandidateStore, follows FollowGraph, profiles ProfileStore, recs RecommendationStore, searchCache ResultCache, cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		store:       store,
		follows:     follows,
		profiles:    profiles,
		recs:        recs,
		searchCache: searchCache,
		cfg:         cfg,
		logger:      logger.With().Str("component", "ranking").Logger(),
		now:         time.Now,
	}, nil
}

// FeedRequest is a home feed page request.
type FeedRequest struct {
	ViewerID *uuid.UUID
	Limit    int
	Cursor   string
	Filter   Filter

	// FollowingBoost raises the followed-author weight regardless of
	// graph size.
	FollowingBoost bool
}

// PopularRequest is a popular feed page request.
type PopularRequest struct {
	ViewerID *uuid.UUID
	Limit    int
	Cursor   string
	Filter   Filter
}

// RecommendRequest is a personalized recommendation page request.
type RecommendRequest struct {
	ViewerID *uuid.UUID
	Limit    int
	Cursor   string
}

// SearchRequest is a full-text search page request.
type SearchRequest struct {
	ViewerID *uuid.UUID
	Query    string
	Limit    int
	Cursor   string
	Filter   Filter
}

// HomeFeed computes one home feed page: a recency window scored by the
// feed function, partitioned into following/global pools, and interleaved
// toward the target following ratio.
func (e *Engine) HomeFeed(ctx context.Context, req FeedRequest) (*models.Page, error) {
	now := e.now()
	limit := e.clampLimit(req.Limit)
	seed := SlotSeed(req.ViewerID, now)

	var followIDs []uuid.UUID
	if req.ViewerID != nil {
		ids, err := e.follows.FollowingIDs(ctx, *req.ViewerID)
		if err != nil {
			return nil, fmt.Errorf("load following ids: %w", err)
		}
		followIDs = ids
	}
	followSet := make(map[uuid.UUID]struct{}, len(followIDs))
	for _, id := range followIDs {
		followSet[id] = struct{}{}
	}

	w := Window{
		Filter: req.Filter,
		Order:  OrderRecency,
		After:  feedKeyset(req.Cursor),
		Limit:  limit * e.cfg.Oversample,
	}
	cands, err := e.store.Query(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("load feed window: %w", err)
	}

	fc := FeedContext{
		FollowWeight: e.cfg.Feed.EffectiveFollowWeight(len(followIDs), req.FollowingBoost),
	}

	var following, global []ScoredCandidate
	for i := range cands {
		r := cands[i]
		if _, ok := followSet[r.AuthorID]; ok {
			r.IsFollowedAuthor = true
		}
		sc := ScoredCandidate{Recipe: r, Score: FeedScore(&r, now, fc, e.cfg.Feed)}
		if r.IsFollowedAuthor {
			following = append(following, sc)
		} else {
			global = append(global, sc)
		}
	}
	SortScored(following, seed, -1)
	SortScored(global, seed, -1)

	icfg := e.cfg.Interleave
	icfg.TargetPrimaryRatio = e.cfg.FeedFollowingRatio
	sparse := len(followIDs) < e.cfg.SparseFollowThreshold
	merged := Interleave(following, global, limit, now, icfg, InterleaveOptions{
		Sparse:      sparse,
		Exploration: ExplorationPool(append(append([]ScoredCandidate{}, following...), global...), now, icfg, seed),
		Seed:        seed,
	})

	page := e.assembleFeedPage(merged, limit, now)
	page.HasMore = page.HasMore || len(cands) >= w.Limit
	metrics.RankingCandidates.WithLabelValues("home").Observe(float64(len(cands)))
	e.logger.Debug().
		Int("candidates", len(cands)).
		Int("following_pool", len(following)).
		Int("returned", len(page.Items)).
		Bool("sparse", sparse).
		Msg("home feed computed")
	return page, nil
}

// Popular computes one popular feed page from a decayed-engagement score
// over a recent window, silently widening the window when signal is thin.
func (e *Engine) Popular(ctx context.Context, req PopularRequest) (*models.Page, error) {
	now := e.now()
	limit := e.clampLimit(req.Limit)
	seed := SlotSeed(req.ViewerID, now)

	scored, err := e.popularScored(ctx, req.Filter, limit, now, seed)
	if err != nil {
		return nil, err
	}

	scored = skipPastScoreCursor(scored, decodeScoreCursor(req.Cursor))
	return assembleScorePage(scored, limit), nil
}

// popularScored loads the popularity window (with the widening retry) and
// returns the scored, sorted candidate list. Shared with the
// recommendation fallback chain.
func (e *Engine) popularScored(ctx context.Context, f Filter, pageSize int, now time.Time, seed string) ([]ScoredCandidate, error) {
	cands, err := e.loadPopularityWindow(ctx, f, pageSize, now)
	if err != nil {
		return nil, fmt.Errorf("load popularity window: %w", err)
	}

	scored := make([]ScoredCandidate, 0, len(cands))
	for i := range cands {
		scored = append(scored, ScoredCandidate{
			Recipe: cands[i],
			Score:  PopularityScore(&cands[i], now, e.cfg.Popularity),
		})
	}
	// Popularity compares scores rounded to one decimal, so near-equal
	// engagement rotates fairly across tie-break slots.
	SortScored(scored, seed, 1)
	return scored, nil
}

// loadPopularityWindow fetches the recent window; when it comes back
// thin, it re-queries with the wide window and unions by id preserving
// first-seen order. The widening is a retry with a relaxed constraint,
// silent and invisible to callers.
func (e *Engine) loadPopularityWindow(ctx context.Context, f Filter, pageSize int, now time.Time) ([]models.Recipe, error) {
	storeLimit := pageSize * e.cfg.Oversample

	w := Window{Filter: f, Order: OrderTrend, Limit: storeLimit}
	w.Filter.CreatedAfter = now.Add(-e.cfg.PopularityWindow)
	first, err := e.store.Query(ctx, w)
	if err != nil {
		return nil, err
	}

	threshold := storeLimit / 2
	if t := pageSize * 5; t < threshold {
		threshold = t
	}
	if len(first) >= threshold {
		return first, nil
	}

	w.Filter.CreatedAfter = now.Add(-e.cfg.PopularityWindowWide)
	second, err := e.store.Query(ctx, w)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(first))
	for i := range first {
		seen[first[i].ID] = struct{}{}
	}
	union := first
	for i := range second {
		if _, dup := seen[second[i].ID]; !dup {
			union = append(union, second[i])
		}
	}
	metrics.PopularityWindowWidened.Inc()
	e.logger.Debug().
		Int("narrow", len(first)).
		Int("union", len(union)).
		Msg("popularity window widened")
	return union, nil
}

// clampLimit applies the default and maximum page size.
func (e *Engine) clampLimit(n int) int {
	if n <= 0 {
		return e.cfg.DefaultPageSize
	}
	if n > e.cfg.MaxPageSize {
		return e.cfg.MaxPageSize
	}
	return n
}

// feedKeyset decodes a feed cursor into a store keyset, nil on garbage.
func feedKeyset(cursor string) *Keyset {
	c := decodeFeedCursor(cursor)
	if c == nil {
		return nil
	}
	return &Keyset{ID: c.ID, CreatedAt: c.CreatedAt}
}

// skipPastScoreCursor resumes a score-ordered list after the cursor row.
// If the row vanished between requests, it resumes at the first score
// strictly below the cursor's.
func skipPastScoreCursor(items []ScoredCandidate, c *scoreCursor) []ScoredCandidate {
	if c == nil {
		return items
	}
	for i := range items {
		if items[i].Recipe.ID == c.ID {
			return items[i+1:]
		}
	}
	for i := range items {
		if items[i].Score < c.Score {
			return items[i:]
		}
	}
	return nil
}

// assembleScorePage builds a page from a score-ordered list with a
// {id, score} cursor.
func assembleScorePage(scored []ScoredCandidate, limit int) *models.Page {
	page := &models.Page{Items: toRankedItems(scored, limit)}
	if len(scored) > len(page.Items) && len(page.Items) > 0 {
		last := page.Items[len(page.Items)-1]
		token := encodeCursor(scoreCursor{ID: last.Recipe.ID, Score: last.Score})
		page.NextCursor = &token
		page.HasMore = true
	}
	return page
}

// assembleFeedPage builds a feed page with a {id, created_at} cursor
// pointing at the oldest item shown, so the next window resumes strictly
// older.
func (e *Engine) assembleFeedPage(merged []ScoredCandidate, limit int, now time.Time) *models.Page {
	page := &models.Page{Items: toRankedItems(merged, limit)}
	page.HasMore = len(merged) > len(page.Items)

	if len(page.Items) > 0 {
		oldest := page.Items[0].Recipe
		for i := range page.Items {
			if page.Items[i].Recipe.CreatedAt.Before(oldest.CreatedAt) {
				oldest = page.Items[i].Recipe
			}
		}
		token := encodeCursor(feedCursor{ID: oldest.ID, CreatedAt: oldest.CreatedAt})
		page.NextCursor = &token
	}

	for i := range page.Items {
		if page.Items[i].Recipe.Age(now) < e.cfg.FreshAge {
			page.NewCount++
		}
	}
	return page
}

// toRankedItems converts the top of a scored list. Viewer-relative flags
// (liked/saved) stay zero here; the caller's enrichment step fills them.
func toRankedItems(scored []ScoredCandidate, limit int) []models.RankedItem {
	n := len(scored)
	if n > limit {
		n = limit
	}
	items := make([]models.RankedItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.RankedItem{Recipe: scored[i].Recipe, Score: scored[i].Score})
	}
	return items
}
