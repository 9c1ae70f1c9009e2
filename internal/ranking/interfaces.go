// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/models"
)

// ErrSimilarityUnavailable is returned by a CandidateStore when the fuzzy
// similarity function is not installed in the backing database. The search
// path falls back to substring matching; it never reaches the caller.
var ErrSimilarityUnavailable = errors.New("ranking: similarity function unavailable")

// Order selects the store-side ordering of a candidate window.
type Order int

const (
	// OrderRecency orders by (created_at, id) descending.
	OrderRecency Order = iota
	// OrderTrend orders by the externally maintained trend counter.
	OrderTrend
)

// String returns a human-readable order name.
func (o Order) String() string {
	switch o {
	case OrderRecency:
		return "recency"
	case OrderTrend:
		return "trend"
	default:
		return "unknown"
	}
}

// Filter restricts a candidate window. Visibility filters (published, not
// hidden, author active) are always applied by the store and are not
// expressed here.
type Filter struct {
	Tag                string
	Difficulty         string
	MaxDurationMinutes int

	// AuthorIDs restricts the window to the given authors (following pool).
	AuthorIDs []uuid.UUID

	// CreatedAfter is the window floor; zero means unbounded.
	CreatedAfter time.Time
}

// Keyset is the resume position of a keyset scan, decoded from a cursor.
// Fields beyond ID are meaningful only for the ordering that wrote them.
type Keyset struct {
	ID        uuid.UUID
	CreatedAt time.Time
}

// Window describes one oversized candidate fetch.
type Window struct {
	Filter Filter
	Order  Order
	After  *Keyset
	Limit  int
}

// SimilarCandidate is a search candidate with its store-computed text
// similarity in [0, 1].
type SimilarCandidate struct {
	Recipe     models.Recipe
	Similarity float64
}

// CandidateStore is the query contract against the persistence layer.
// Implementations must support keyset pagination (resume strictly after
// Window.After) and carry their own timeouts.
type CandidateStore interface {
	// Query returns an ordered window of visible candidates.
	Query(ctx context.Context, w Window) ([]models.Recipe, error)

	// QueryByIDs returns the live records for the given ids with visibility
	// filters applied; missing or hidden ids are simply absent.
	QueryByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error)

	// SearchSimilarity returns candidates with fuzzy text similarity over
	// title and ingredients. Returns ErrSimilarityUnavailable when the
	// backing database lacks the similarity function.
	SearchSimilarity(ctx context.Context, query string, w Window) ([]SimilarCandidate, error)

	// SearchSubstring returns candidates whose title or ingredients contain
	// the query, ordered by trend score.
	SearchSubstring(ctx context.Context, query string, w Window) ([]models.Recipe, error)
}

// FollowGraph exposes the social graph.
type FollowGraph interface {
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	IsFollowing(ctx context.Context, follower, author uuid.UUID) (bool, error)
}

// ProfileStore exposes the viewer's behavioral signal used for
// personalization.
type ProfileStore interface {
	LikedTags(ctx context.Context, userID uuid.UUID) ([]string, error)
	SavedTags(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// RecommendationStore reads precomputed model output. The rows are owned
// and refreshed by an external batch job; the engine only reads them.
type RecommendationStore interface {
	// ActiveModel returns the current model id, or "" when none is active.
	ActiveModel(ctx context.Context) (string, error)

	// RecommendationsFor returns the model's ranked id list for a user.
	RecommendationsFor(ctx context.Context, userID uuid.UUID, modelID string) ([]models.PrecomputedItem, error)
}

// ResultCache is the injected best-effort cache for search pages.
type ResultCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// ScoredCandidate pairs a candidate with its computed score. Ephemeral,
// computed fresh per request.
type ScoredCandidate struct {
	Recipe models.Recipe
	Score  float64
}
