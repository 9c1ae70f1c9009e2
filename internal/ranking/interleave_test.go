// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/models"
)

func cand(score float64, category string, age time.Duration, now time.Time) ScoredCandidate {
	return ScoredCandidate{
		Recipe: models.Recipe{
			ID:        uuid.New(),
			AuthorID:  uuid.New(),
			Title:     fmt.Sprintf("recipe %.1f", score),
			Tags:      []models.Tag{{Name: category}},
			CreatedAt: now.Add(-age),
		},
		Score: score,
	}
}

func candPool(n int, baseScore float64, now time.Time) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cand(baseScore-float64(i), fmt.Sprintf("cat-%d", i), 48*time.Hour, now))
	}
	return out
}

func idSet(items []ScoredCandidate) map[uuid.UUID]bool {
	s := make(map[uuid.UUID]bool, len(items))
	for _, c := range items {
		s[c.Recipe.ID] = true
	}
	return s
}

func TestInterleaveTargetRatio(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	primary := candPool(5, 100, now)
	secondary := candPool(20, 50, now)

	out := Interleave(primary, secondary, 10, now, cfg, InterleaveOptions{Seed: "s"})
	if len(out) != 10 {
		t.Fatalf("got %d items, want 10", len(out))
	}

	// With only 5 primary candidates for a 0.6 ratio page of 10, all five
	// are placed, spread through the page rather than clumped.
	isPrimary := idSet(primary)
	var positions []int
	for i, c := range out {
		if isPrimary[c.Recipe.ID] {
			positions = append(positions, i)
		}
	}
	want := []int{1, 3, 4, 6, 8}
	if len(positions) != len(want) {
		t.Fatalf("primary positions %v, want %v", positions, want)
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("primary positions %v, want %v", positions, want)
		}
	}
}

func TestInterleaveAuthorCooldown(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	author := uuid.New()
	primary := []ScoredCandidate{
		cand(10, "a", 48*time.Hour, now),
		cand(9, "b", 48*time.Hour, now),
	}
	primary[0].Recipe.AuthorID = author
	primary[1].Recipe.AuthorID = author

	secondary := candPool(10, 5, now)

	out := Interleave(primary, secondary, 5, now, cfg, InterleaveOptions{Seed: "s"})
	if len(out) != 5 {
		t.Fatalf("got %d items, want 5", len(out))
	}
	n := 0
	for _, c := range out {
		if c.Recipe.AuthorID == author {
			n++
		}
	}
	if n != 1 {
		t.Errorf("author appeared %d times within the cooldown window, want 1", n)
	}
}

func TestInterleaveCategoryRun(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	secondary := []ScoredCandidate{
		cand(10, "soup", 48*time.Hour, now),
		cand(9, "soup", 48*time.Hour, now),
		cand(8, "soup", 48*time.Hour, now),
		cand(7, "soup", 48*time.Hour, now),
		cand(6, "salad", 48*time.Hour, now),
	}

	out := Interleave(nil, secondary, 5, now, cfg, InterleaveOptions{Seed: "s"})
	if len(out) != 5 {
		t.Fatalf("got %d items, want 5", len(out))
	}
	// Three soups, then the run breaks: the salad jumps the fourth soup,
	// which returns via the relaxed fill.
	wantCats := []string{"soup", "soup", "soup", "salad", "soup"}
	for i, c := range out {
		if got := c.Recipe.PrimaryCategory(); got != wantCats[i] {
			t.Errorf("position %d: category %q, want %q", i, got, wantCats[i])
		}
	}
}

func TestInterleaveRelaxedFill(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	// One author owns every candidate. The strict pass admits one; the
	// relaxed fill completes the page anyway.
	author := uuid.New()
	var secondary []ScoredCandidate
	for i := 0; i < 3; i++ {
		c := cand(float64(10-i), fmt.Sprintf("c%d", i), 48*time.Hour, now)
		c.Recipe.AuthorID = author
		secondary = append(secondary, c)
	}

	out := Interleave(nil, secondary, 3, now, cfg, InterleaveOptions{Seed: "s"})
	if len(out) != 3 {
		t.Fatalf("relaxed fill produced %d items, want 3", len(out))
	}
}

func TestInterleaveExplorationInjection(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	secondary := candPool(20, 50, now)
	explore := cand(1, "hidden-gem", 48*time.Hour, now)

	out := Interleave(nil, secondary, 10, now, cfg, InterleaveOptions{
		Sparse:      true,
		Exploration: []ScoredCandidate{explore},
		Seed:        "s",
	})
	if len(out) != 10 {
		t.Fatalf("got %d items, want 10", len(out))
	}
	// Interval 5: the first injection lands at slot index 4.
	if out[4].Recipe.ID != explore.Recipe.ID {
		t.Errorf("exploration candidate not at slot 4")
	}

	// Non-sparse viewers get no injection.
	plain := Interleave(nil, secondary, 10, now, cfg, InterleaveOptions{
		Exploration: []ScoredCandidate{explore},
		Seed:        "s",
	})
	for _, c := range plain {
		if c.Recipe.ID == explore.Recipe.ID {
			t.Error("exploration injected for non-sparse viewer")
		}
	}
}

func TestInterleaveFreshChunkGuarantee(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	// Eleven stale candidates plus one brand-new low scorer that would
	// never crack the top ten on score alone.
	secondary := candPool(11, 50, now)
	fresh := cand(0.1, "fresh", 10*time.Minute, now)
	secondary = append(secondary, fresh)

	out := Interleave(nil, secondary, 10, now, cfg, InterleaveOptions{Seed: "s"})
	if len(out) != 10 {
		t.Fatalf("got %d items, want 10", len(out))
	}
	found := false
	for _, c := range out {
		if c.Recipe.Age(now) < cfg.FreshMaxAge {
			found = true
		}
	}
	if !found {
		t.Error("chunk has no fresh item despite one being available")
	}
	// The swap targets the chunk's last slot.
	if out[9].Recipe.ID != fresh.Recipe.ID {
		t.Errorf("fresh item not at the chunk's final slot")
	}
}

func TestInterleaveDeduplicates(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	shared := cand(10, "dup", 48*time.Hour, now)
	primary := []ScoredCandidate{shared}
	secondary := append([]ScoredCandidate{shared}, candPool(5, 5, now)...)

	out := Interleave(primary, secondary, 6, now, cfg, InterleaveOptions{Seed: "s"})
	seen := make(map[uuid.UUID]int)
	for _, c := range out {
		seen[c.Recipe.ID]++
	}
	if seen[shared.Recipe.ID] != 1 {
		t.Errorf("shared candidate appeared %d times, want 1", seen[shared.Recipe.ID])
	}
}

func TestExplorationPool(t *testing.T) {
	now := time.Now()
	cfg := DefaultInterleaveConfig()

	veryNew := cand(1, "new", time.Hour, now)
	veryNew.Recipe.ViewCount = 2

	trending := cand(5, "trend", 72*time.Hour, now)
	trending.Recipe.TrendScore = 9.5
	trending.Recipe.ViewCount = 10000

	boring := cand(3, "old", 72*time.Hour, now)
	boring.Recipe.ViewCount = 50

	pool := ExplorationPool([]ScoredCandidate{boring, trending, veryNew}, now, cfg, "s")
	if len(pool) != 2 {
		t.Fatalf("pool size %d, want 2", len(pool))
	}
	if pool[0].Recipe.ID != veryNew.Recipe.ID {
		t.Error("very-new candidate must lead the pool")
	}
	if pool[1].Recipe.ID != trending.Recipe.ID {
		t.Error("trending candidate must follow")
	}
	if pool[1].Score != 9.5 {
		t.Errorf("trending pool score = %v, want trend score 9.5", pool[1].Score)
	}
}
