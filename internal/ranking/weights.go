// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import "fmt"

// The score weights live in one structure per score function, constructed
// once and passed by value into the pure scorers. Defaults below are the
// production values; tests override them freely.

// PopularityWeights parameterizes the popularity score:
//
//	decay(age, tau) * (wView*ln(1+views) + ln(1 + wLike*likes + wComment*comments + wSave*saves))
type PopularityWeights struct {
	// TauHours is the exponential decay time constant. Default: 24.
	TauHours float64 `koanf:"tau_hours" json:"tau_hours"`

	// View weights the log view count. Default: 0.6.
	View float64 `koanf:"view" json:"view"`

	// Like, Comment, Save weight the engagement mix. Defaults: 1.0, 2.0, 1.5.
	Like    float64 `koanf:"like" json:"like"`
	Comment float64 `koanf:"comment" json:"comment"`
	Save    float64 `koanf:"save" json:"save"`
}

// DefaultPopularityWeights returns the production popularity weights.
func DefaultPopularityWeights() PopularityWeights {
	return PopularityWeights{TauHours: 24, View: 0.6, Like: 1.0, Comment: 2.0, Save: 1.5}
}

// FeedWeights parameterizes the home feed score.
type FeedWeights struct {
	// TauHours is the recency decay time constant. Default: 36.
	TauHours float64 `koanf:"tau_hours" json:"tau_hours"`

	// New weights the recency decay term. Default: 1.0.
	New float64 `koanf:"new" json:"new"`

	// Engagement weights the log engagement term. Default: 1.0.
	Engagement float64 `koanf:"engagement" json:"engagement"`

	// Alpha, Beta, Gamma weight likes, comments, saves inside the log.
	// Defaults: 1, 2, 1.5.
	Alpha float64 `koanf:"alpha" json:"alpha"`
	Beta  float64 `koanf:"beta" json:"beta"`
	Gamma float64 `koanf:"gamma" json:"gamma"`

	// FollowBase is the followed-author bonus for viewers with a sparse
	// graph; FollowBoosted applies from FollowBoostThreshold follows up,
	// or when the caller requests a following boost. Holding the base low
	// keeps a thin graph from starving the feed. Defaults: 0.3, 0.9, 3.
	FollowBase           float64 `koanf:"follow_base" json:"follow_base"`
	FollowBoosted        float64 `koanf:"follow_boosted" json:"follow_boosted"`
	FollowBoostThreshold int     `koanf:"follow_boost_threshold" json:"follow_boost_threshold"`

	// Burst is the bonus for items younger than BurstAgeMinutes.
	// Defaults: 0.5, 30.
	Burst           float64 `koanf:"burst" json:"burst"`
	BurstAgeMinutes int     `koanf:"burst_age_minutes" json:"burst_age_minutes"`
}

// DefaultFeedWeights returns the production feed weights.
func DefaultFeedWeights() FeedWeights {
	return FeedWeights{
		TauHours:             36,
		New:                  1.0,
		Engagement:           1.0,
		Alpha:                1,
		Beta:                 2,
		Gamma:                1.5,
		FollowBase:           0.3,
		FollowBoosted:        0.9,
		FollowBoostThreshold: 3,
		Burst:                0.5,
		BurstAgeMinutes:      30,
	}
}

// EffectiveFollowWeight resolves the adaptive followed-author weight.
func (w FeedWeights) EffectiveFollowWeight(followCount int, boostRequested bool) float64 {
	if boostRequested || followCount >= w.FollowBoostThreshold {
		return w.FollowBoosted
	}
	return w.FollowBase
}

// RecommendWeights parameterizes the heuristic recommendation score.
type RecommendWeights struct {
	// Follow is the followed-author bonus. Default: 1.0.
	Follow float64 `koanf:"follow" json:"follow"`

	// Tag weights the preferred-tag overlap count. Default: 0.8.
	Tag float64 `koanf:"tag" json:"tag"`

	// Engagement weights ln(1 + likes + 2*comments + 1.5*saves). Default: 0.5.
	Engagement float64 `koanf:"engagement" json:"engagement"`

	// Recency weights decay(age, TauHours). Defaults: 0.2, 72.
	Recency  float64 `koanf:"recency" json:"recency"`
	TauHours float64 `koanf:"tau_hours" json:"tau_hours"`

	// Season weights the calendar/tag heuristic (0 or 1). Default: 0.2.
	Season float64 `koanf:"season" json:"season"`
}

// DefaultRecommendWeights returns the production recommendation weights.
func DefaultRecommendWeights() RecommendWeights {
	return RecommendWeights{Follow: 1.0, Tag: 0.8, Engagement: 0.5, Recency: 0.2, TauHours: 72, Season: 0.2}
}

// SearchWeights parameterizes the hybrid search blend:
//
//	wSim*textSimilarity + wAlias*aliasBonus + wTrend*trendScore
type SearchWeights struct {
	Similarity float64 `koanf:"similarity" json:"similarity"`
	Alias      float64 `koanf:"alias" json:"alias"`
	Trend      float64 `koanf:"trend" json:"trend"`

	// AliasExact and AliasSubstring are the alternate-title bonuses fed
	// into the alias term. Defaults: 0.15, 0.08.
	AliasExact     float64 `koanf:"alias_exact" json:"alias_exact"`
	AliasSubstring float64 `koanf:"alias_substring" json:"alias_substring"`
}

// DefaultSearchWeights returns the production search weights.
func DefaultSearchWeights() SearchWeights {
	return SearchWeights{Similarity: 0.7, Alias: 0.1, Trend: 0.3, AliasExact: 0.15, AliasSubstring: 0.08}
}

func validatePositive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, v)
	}
	return nil
}

// Validate rejects weight sets that would break the score shape.
func (w PopularityWeights) Validate() error {
	return validatePositive("popularity.tau_hours", w.TauHours)
}

// Validate rejects weight sets that would break the score shape.
func (w FeedWeights) Validate() error {
	if err := validatePositive("feed.tau_hours", w.TauHours); err != nil {
		return err
	}
	if w.FollowBoostThreshold < 0 {
		return fmt.Errorf("feed.follow_boost_threshold must be >= 0, got %d", w.FollowBoostThreshold)
	}
	return nil
}

// Validate rejects weight sets that would break the score shape.
func (w RecommendWeights) Validate() error {
	return validatePositive("recommend.tau_hours", w.TauHours)
}

// Validate rejects weight sets that would break the score shape.
func (w SearchWeights) Validate() error {
	if w.Similarity < 0 || w.Alias < 0 || w.Trend < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	return nil
}
