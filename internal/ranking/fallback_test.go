// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/models"
)

func TestRecommendedUsesPrecomputed(t *testing.T) {
	f := newFixture(t)
	viewer := uuid.New()

	top := f.recipe(time.Hour, 1)
	mid := f.recipe(time.Hour, 1)
	gone := uuid.New()

	f.recs.model = "als-2026-03"
	f.recs.rows = map[uuid.UUID][]models.PrecomputedItem{
		viewer: {
			{RecipeID: top.ID.String(), Score: 0.95},
			{RecipeID: gone.String(), Score: 0.90},
			{RecipeID: mid.ID.String(), Score: 0.85},
		},
	}
	f.store.byIDsFn = func(ids []uuid.UUID) ([]models.Recipe, error) {
		// The deleted row drops out at hydration.
		return []models.Recipe{top, mid}, nil
	}

	page, err := f.engine.Recommended(context.Background(), RecommendRequest{ViewerID: &viewer, Limit: 10})
	if err != nil {
		t.Fatalf("Recommended: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}
	if page.Items[0].Recipe.ID != top.ID || page.Items[1].Recipe.ID != mid.ID {
		t.Error("model ordering not preserved")
	}
	if page.Items[0].Score != 0.95 {
		t.Errorf("model score not preserved: %v", page.Items[0].Score)
	}
	if len(f.store.queries) != 0 {
		t.Error("precomputed path must not run window queries")
	}
}

func TestRecommendedFallsBackToHeuristic(t *testing.T) {
	f := newFixture(t)
	viewer := uuid.New()

	// No active model. Viewer has taste signal: dense graph and liked tags.
	followedAuthor := uuid.New()
	f.follows.following[viewer] = []uuid.UUID{followedAuthor, uuid.New(), uuid.New()}
	f.profiles.liked[viewer] = []string{"Soup"}

	match := f.recipe(12*time.Hour, 5)
	match.AuthorID = followedAuthor
	match.Tags = []models.Tag{{Name: "soup"}}
	other := f.recipe(2*time.Hour, 5)

	f.store.queryFn = func(w Window) ([]models.Recipe, error) {
		if w.Order == OrderRecency {
			return []models.Recipe{other, match}, nil
		}
		return nil, nil
	}

	page, err := f.engine.Recommended(context.Background(), RecommendRequest{ViewerID: &viewer, Limit: 2})
	if err != nil {
		t.Fatalf("Recommended: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}
	// Follow bonus plus tag overlap beats mere recency.
	if page.Items[0].Recipe.ID != match.ID {
		t.Error("followed-author tag-matching recipe must rank first")
	}
}

func TestRecommendedPrecomputedErrorFallsThrough(t *testing.T) {
	f := newFixture(t)
	viewer := uuid.New()

	f.recs.model = "als-2026-03"
	f.recs.rowsErr = errors.New("read timeout")

	r := f.recipe(time.Hour, 5)
	f.store.queryFn = func(Window) ([]models.Recipe, error) {
		return []models.Recipe{r}, nil
	}

	page, err := f.engine.Recommended(context.Background(), RecommendRequest{ViewerID: &viewer, Limit: 5})
	if err != nil {
		t.Fatalf("model read failure must not fail the request: %v", err)
	}
	if len(page.Items) == 0 {
		t.Fatal("fallback produced an empty page")
	}
}

func TestRecommendedAnonymousColdStartBlend(t *testing.T) {
	f := newFixture(t)

	// An anonymous request carries zero signal, so it takes the same
	// trend-heavy cold-start blend as a signal-less viewer, exploration
	// slots included.
	pool := make([]models.Recipe, 0, 7)
	for i := 0; i < 6; i++ {
		r := f.recipe(48*time.Hour, 50)
		r.TrendScore = float64(5 + i)
		pool = append(pool, r)
	}
	veryNew := f.recipe(time.Hour, 0)
	pool = append(pool, veryNew)

	f.store.queryFn = func(w Window) ([]models.Recipe, error) {
		if w.Order == OrderRecency {
			return pool, nil
		}
		return nil, nil
	}

	page, err := f.engine.Recommended(context.Background(), RecommendRequest{Limit: 5})
	if err != nil {
		t.Fatalf("Recommended: %v", err)
	}
	if len(page.Items) != 5 {
		t.Fatalf("got %d items, want 5", len(page.Items))
	}
	found := false
	for _, it := range page.Items {
		if it.Recipe.ID == veryNew.ID {
			found = true
		}
	}
	if !found {
		t.Error("anonymous cold-start blend must surface a brand-new recipe in the first slots")
	}
}

func TestRecommendedAnonymousEmptyWindowGetsPopularity(t *testing.T) {
	f := newFixture(t)

	hot := f.recipe(2*time.Hour, 500)
	mild := f.recipe(2*time.Hour, 5)
	f.store.queryFn = func(w Window) ([]models.Recipe, error) {
		if w.Order == OrderTrend {
			return []models.Recipe{mild, hot}, nil
		}
		return nil, nil
	}

	page, err := f.engine.Recommended(context.Background(), RecommendRequest{Limit: 5})
	if err != nil {
		t.Fatalf("Recommended: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}
	if page.Items[0].Recipe.ID != hot.ID {
		t.Error("empty recency window must fall through to popularity order")
	}
}

func TestRecommendedColdStartBlendsTrend(t *testing.T) {
	f := newFixture(t)
	viewer := uuid.New()
	// One follow, no tags: cold start.
	f.follows.following[viewer] = []uuid.UUID{uuid.New()}

	trending := f.recipe(48*time.Hour, 2)
	trending.TrendScore = 9.0
	plain := f.recipe(time.Hour, 2)

	f.store.queryFn = func(w Window) ([]models.Recipe, error) {
		if w.Order == OrderRecency {
			return []models.Recipe{plain, trending}, nil
		}
		return nil, nil
	}

	page, err := f.engine.Recommended(context.Background(), RecommendRequest{ViewerID: &viewer, Limit: 2})
	if err != nil {
		t.Fatalf("Recommended: %v", err)
	}
	found := false
	for _, it := range page.Items {
		if it.Recipe.ID == trending.ID {
			found = true
		}
	}
	if !found {
		t.Error("cold-start blend must surface the trending recipe")
	}
}

func TestRecommendedTopsUpShortHeuristicPage(t *testing.T) {
	f := newFixture(t)
	viewer := uuid.New()
	f.follows.following[viewer] = []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	f.profiles.liked[viewer] = []string{"soup"}

	thin := f.recipe(time.Hour, 3)
	popA := f.recipe(3*time.Hour, 400)
	popB := f.recipe(4*time.Hour, 300)

	f.store.queryFn = func(w Window) ([]models.Recipe, error) {
		if w.Order == OrderRecency {
			return []models.Recipe{thin}, nil
		}
		return []models.Recipe{popA, popB, thin}, nil
	}

	page, err := f.engine.Recommended(context.Background(), RecommendRequest{ViewerID: &viewer, Limit: 3})
	if err != nil {
		t.Fatalf("Recommended: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("got %d items, want 3 after top-up", len(page.Items))
	}
	if page.Items[0].Recipe.ID != thin.ID {
		t.Error("heuristic result must keep the lead position")
	}
	seen := make(map[uuid.UUID]int)
	for _, it := range page.Items {
		seen[it.Recipe.ID]++
	}
	if seen[thin.ID] != 1 {
		t.Error("top-up must not duplicate existing items")
	}
}
