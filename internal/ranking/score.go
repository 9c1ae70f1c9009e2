// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/ckarenz/ladle/internal/models"
)

// The four score functions are pure: (candidate, now, context) -> float64.
// "now" is wall-clock time captured once at request start and reused for
// every candidate, so ranks cannot shift within one response.

// Decay returns e^(-age/tau). Strictly decreasing in age.
func Decay(age, tau time.Duration) float64 {
	if tau <= 0 {
		return 0
	}
	return math.Exp(-age.Hours() / tau.Hours())
}

// PopularityScore ranks by decayed engagement volume.
func PopularityScore(r *models.Recipe, now time.Time, w PopularityWeights) float64 {
	age := r.Age(now)
	eng := w.Like*float64(r.Engagement.Likes) +
		w.Comment*float64(r.Engagement.Comments) +
		w.Save*float64(r.Engagement.Saves)
	return Decay(age, hours(w.TauHours)) *
		(w.View*math.Log1p(float64(r.ViewCount)) + math.Log1p(eng))
}

// FeedContext carries the viewer-dependent inputs of the feed score.
type FeedContext struct {
	// FollowWeight is the resolved adaptive followed-author weight, from
	// FeedWeights.EffectiveFollowWeight.
	FollowWeight float64
}

// FeedScore ranks the home feed: recency decay + log engagement +
// followed-author bonus + a short-lived burst bonus for brand-new posts.
func FeedScore(r *models.Recipe, now time.Time, fc FeedContext, w FeedWeights) float64 {
	age := r.Age(now)

	score := w.New * Decay(age, hours(w.TauHours))
	score += w.Engagement * math.Log1p(
		w.Alpha*float64(r.Engagement.Likes)+
			w.Beta*float64(r.Engagement.Comments)+
			w.Gamma*float64(r.Engagement.Saves))
	if r.IsFollowedAuthor {
		score += fc.FollowWeight
	}
	if age < time.Duration(w.BurstAgeMinutes)*time.Minute {
		score += w.Burst
	}
	return score
}

// RecommendContext carries the viewer-dependent inputs of the heuristic
// recommendation score.
type RecommendContext struct {
	// PreferredTags is the union of the viewer's liked and saved tags,
	// lowercased.
	PreferredTags map[string]struct{}
}

// RecommendScore ranks the personalized feed heuristic.
func RecommendScore(r *models.Recipe, now time.Time, rc RecommendContext, w RecommendWeights) float64 {
	score := 0.0
	if r.IsFollowedAuthor {
		score += w.Follow
	}
	score += w.Tag * float64(TagOverlap(r.Tags, rc.PreferredTags))
	score += w.Engagement * math.Log1p(
		float64(r.Engagement.Likes)+
			2*float64(r.Engagement.Comments)+
			1.5*float64(r.Engagement.Saves))
	score += w.Recency * Decay(r.Age(now), hours(w.TauHours))
	score += w.Season * SeasonalBoost(now, r.Tags)
	return score
}

// AliasMatch classifies how the query matches a recipe's alternate title.
type AliasMatch int

const (
	// AliasNone means no alternate-title match.
	AliasNone AliasMatch = iota
	// AliasSubstring means the query appears inside the alternate title.
	AliasSubstring
	// AliasExact means the query equals the alternate title.
	AliasExact
)

// ClassifyAlias matches a normalized query against an alternate title.
func ClassifyAlias(altTitle, query string) AliasMatch {
	if altTitle == "" || query == "" {
		return AliasNone
	}
	alt := strings.ToLower(strings.TrimSpace(altTitle))
	switch {
	case alt == query:
		return AliasExact
	case strings.Contains(alt, query):
		return AliasSubstring
	default:
		return AliasNone
	}
}

// SearchScore blends fuzzy text similarity, the alternate-title bonus, and
// the externally maintained trend counter.
func SearchScore(similarity float64, alias AliasMatch, trend float64, w SearchWeights) float64 {
	bonus := 0.0
	switch alias {
	case AliasExact:
		bonus = w.AliasExact
	case AliasSubstring:
		bonus = w.AliasSubstring
	}
	return w.Similarity*similarity + w.Alias*bonus + w.Trend*trend
}

// TagOverlap counts how many of the recipe's tags appear in the preferred
// set.
func TagOverlap(tags []models.Tag, preferred map[string]struct{}) int {
	if len(preferred) == 0 {
		return 0
	}
	n := 0
	for _, t := range tags {
		if _, ok := preferred[strings.ToLower(t.Name)]; ok {
			n++
		}
	}
	return n
}

// Seasonal tag keywords. Coarse by design: the boost is a binary nudge,
// not a taxonomy.
var (
	winterTagKeywords = []string{"soup", "stew", "braise", "roast", "hotpot"}
	summerTagKeywords = []string{"salad", "cold", "chilled", "grill", "ice"}
)

// SeasonalBoost returns 1 when a tag matches the current season's
// keywords, else 0. Seasons follow the northern-hemisphere calendar.
func SeasonalBoost(now time.Time, tags []models.Tag) float64 {
	var keywords []string
	switch now.UTC().Month() {
	case time.December, time.January, time.February:
		keywords = winterTagKeywords
	case time.June, time.July, time.August:
		keywords = summerTagKeywords
	default:
		return 0
	}

	for _, t := range tags {
		name := strings.ToLower(t.Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return 1
			}
		}
	}
	return 0
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
