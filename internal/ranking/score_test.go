// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/models"
)

func testRecipe(age time.Duration, now time.Time) models.Recipe {
	return models.Recipe{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "Test Recipe",
		CreatedAt: now.Add(-age),
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDecayMonotonic(t *testing.T) {
	tau := 24 * time.Hour
	prev := Decay(0, tau)
	if prev != 1 {
		t.Errorf("Decay(0) = %v, want 1", prev)
	}
	for _, age := range []time.Duration{time.Hour, 6 * time.Hour, 24 * time.Hour, 72 * time.Hour} {
		cur := Decay(age, tau)
		if cur >= prev {
			t.Errorf("Decay(%v) = %v, not decreasing from %v", age, cur, prev)
		}
		prev = cur
	}
	if got := Decay(time.Hour, 0); got != 0 {
		t.Errorf("Decay with zero tau = %v, want 0", got)
	}
}

func TestPopularityScoreOrdersByEngagement(t *testing.T) {
	now := time.Now()
	w := DefaultPopularityWeights()

	hot := testRecipe(2*time.Hour, now)
	hot.ViewCount = 1000
	hot.Engagement = models.Engagement{Likes: 100, Comments: 20, Saves: 40}

	quiet := testRecipe(2*time.Hour, now)
	quiet.ViewCount = 10
	quiet.Engagement = models.Engagement{Likes: 1}

	if PopularityScore(&hot, now, w) <= PopularityScore(&quiet, now, w) {
		t.Error("higher engagement should score higher at equal age")
	}

	old := hot
	old.CreatedAt = now.Add(-14 * 24 * time.Hour)
	if PopularityScore(&old, now, w) >= PopularityScore(&hot, now, w) {
		t.Error("older item with equal engagement should score lower")
	}
}

func TestFeedScoreFollowAndBurst(t *testing.T) {
	now := time.Now()
	w := DefaultFeedWeights()

	base := testRecipe(2*time.Hour, now)
	followed := base
	followed.IsFollowedAuthor = true

	fc := FeedContext{FollowWeight: w.FollowBoosted}
	diff := FeedScore(&followed, now, fc, w) - FeedScore(&base, now, fc, w)
	if !almostEqual(diff, w.FollowBoosted) {
		t.Errorf("follow bonus = %v, want %v", diff, w.FollowBoosted)
	}

	fresh := testRecipe(10*time.Minute, now)
	stale := fresh
	stale.CreatedAt = now.Add(-2 * time.Hour)
	burst := FeedScore(&fresh, now, fc, w) - FeedScore(&stale, now, fc, w)
	if burst <= w.Burst {
		// Burst plus the recency decay difference, so strictly above Burst.
		t.Errorf("burst+decay difference = %v, want > %v", burst, w.Burst)
	}
}

func TestEffectiveFollowWeight(t *testing.T) {
	w := DefaultFeedWeights()
	tests := []struct {
		name    string
		follows int
		boost   bool
		want    float64
	}{
		{"sparse graph", 1, false, w.FollowBase},
		{"at threshold", 3, false, w.FollowBoosted},
		{"dense graph", 50, false, w.FollowBoosted},
		{"sparse with boost requested", 0, true, w.FollowBoosted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.EffectiveFollowWeight(tt.follows, tt.boost); got != tt.want {
				t.Errorf("EffectiveFollowWeight(%d, %v) = %v, want %v", tt.follows, tt.boost, got, tt.want)
			}
		})
	}
}

func TestRecommendScoreTagOverlap(t *testing.T) {
	now := time.Now()
	w := DefaultRecommendWeights()
	rc := RecommendContext{PreferredTags: map[string]struct{}{"soup": {}, "korean": {}}}

	matched := testRecipe(24*time.Hour, now)
	matched.Tags = []models.Tag{{Name: "Soup"}, {Name: "Korean"}, {Name: "winter"}}
	unmatched := testRecipe(24*time.Hour, now)
	unmatched.Tags = []models.Tag{{Name: "dessert"}}

	diff := RecommendScore(&matched, now, rc, w) - RecommendScore(&unmatched, now, rc, w)
	if !almostEqual(diff, 2*w.Tag) {
		t.Errorf("two-tag overlap difference = %v, want %v", diff, 2*w.Tag)
	}
}

func TestClassifyAlias(t *testing.T) {
	tests := []struct {
		alt, query string
		want       AliasMatch
	}{
		{"Kimchi Jjigae", "kimchi jjigae", AliasExact},
		{"Kimchi Jjigae", "jjigae", AliasSubstring},
		{"Kimchi Jjigae", "ramen", AliasNone},
		{"", "anything", AliasNone},
		{"something", "", AliasNone},
	}
	for _, tt := range tests {
		if got := ClassifyAlias(tt.alt, tt.query); got != tt.want {
			t.Errorf("ClassifyAlias(%q, %q) = %v, want %v", tt.alt, tt.query, got, tt.want)
		}
	}
}

func TestSearchScoreAliasOnly(t *testing.T) {
	// No text similarity, exact alternate-title match, trend 2.0:
	// the alias and trend terms carry the whole score.
	w := DefaultSearchWeights()
	got := SearchScore(0, AliasExact, 2.0, w)
	want := w.Alias*w.AliasExact + w.Trend*2.0
	if !almostEqual(got, want) {
		t.Errorf("SearchScore = %v, want %v", got, want)
	}

	if SearchScore(0.9, AliasNone, 0, w) <= SearchScore(0.2, AliasNone, 0, w) {
		t.Error("higher similarity should score higher")
	}
}

func TestSearchScoreAliasOnlyRanksBelowPartialSimilarity(t *testing.T) {
	// An exact alias with zero text similarity contributes only
	// w.Alias*w.AliasExact, so even a faint text match outranks it at
	// equal trend.
	w := DefaultSearchWeights()
	aliasOnly := SearchScore(0, AliasExact, 1.0, w)
	faintText := SearchScore(0.05, AliasNone, 1.0, w)
	if aliasOnly >= faintText {
		t.Errorf("alias-only score %v must rank below partial-similarity score %v", aliasOnly, faintText)
	}
}

func TestSeasonalBoost(t *testing.T) {
	winterTags := []models.Tag{{Name: "Beef Stew"}}
	summerTags := []models.Tag{{Name: "cold noodles"}}

	december := time.Date(2026, time.December, 15, 12, 0, 0, 0, time.UTC)
	july := time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 15, 12, 0, 0, 0, time.UTC)

	if SeasonalBoost(december, winterTags) != 1 {
		t.Error("stew in december should boost")
	}
	if SeasonalBoost(december, summerTags) != 0 {
		t.Error("cold noodles in december should not boost")
	}
	if SeasonalBoost(july, summerTags) != 1 {
		t.Error("cold noodles in july should boost")
	}
	if SeasonalBoost(april, winterTags) != 0 {
		t.Error("no boost outside winter and summer")
	}
}
