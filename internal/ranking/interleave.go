// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"time"

	"github.com/google/uuid"
)

// InterleaveConfig holds the diversity and exploration knobs. The window
// sizes and age thresholds are tunable constants with no inherent semantic
// meaning; the defaults are the observed production values.
type InterleaveConfig struct {
	// TargetPrimaryRatio is the share of the result the primary pool
	// should reach when it has enough items. Feed: 0.6 following.
	TargetPrimaryRatio float64 `koanf:"target_primary_ratio" json:"target_primary_ratio"`

	// AuthorCooldown rejects a candidate whose author appears in the last
	// N accepted items. Default: 5.
	AuthorCooldown int `koanf:"author_cooldown" json:"author_cooldown"`

	// CategoryRun rejects a candidate whose primary category equals that
	// of the last N accepted items (exactly N consecutive). Default: 3.
	CategoryRun int `koanf:"category_run" json:"category_run"`

	// ExplorationInterval attempts an exploration injection at every Nth
	// accepted slot for sparse-graph viewers. Default: 5.
	ExplorationInterval int `koanf:"exploration_interval" json:"exploration_interval"`

	// VeryNewMaxAge / VeryNewMaxViews define the "very new" exploration
	// candidates. Defaults: 24h, 5.
	VeryNewMaxAge   time.Duration `koanf:"very_new_max_age" json:"very_new_max_age"`
	VeryNewMaxViews int64         `koanf:"very_new_max_views" json:"very_new_max_views"`

	// FreshChunkSize / FreshMaxAge drive the minimum new-content
	// guarantee: each chunk of FreshChunkSize result slots gets at least
	// one item younger than FreshMaxAge when one exists. Defaults: 10, 30m.
	FreshChunkSize int           `koanf:"fresh_chunk_size" json:"fresh_chunk_size"`
	FreshMaxAge    time.Duration `koanf:"fresh_max_age" json:"fresh_max_age"`
}

// DefaultInterleaveConfig returns the production interleaver settings.
func DefaultInterleaveConfig() InterleaveConfig {
	return InterleaveConfig{
		TargetPrimaryRatio:  0.6,
		AuthorCooldown:      5,
		CategoryRun:         3,
		ExplorationInterval: 5,
		VeryNewMaxAge:       24 * time.Hour,
		VeryNewMaxViews:     5,
		FreshChunkSize:      10,
		FreshMaxAge:         30 * time.Minute,
	}
}

// InterleaveOptions carries the per-request interleaving inputs.
type InterleaveOptions struct {
	// Sparse enables exploration injection (viewer has a thin graph).
	Sparse bool

	// Exploration is the injection pool: very-new or top-trend candidates,
	// best first.
	Exploration []ScoredCandidate

	// Seed is the tie-break seed used to order the relaxed-fill scan.
	Seed string
}

// windowState is the interleaving-time diversity state: the recent-author
// and recent-category queues. Created fresh per request, discarded after
// the page is assembled.
type windowState struct {
	cfg              InterleaveConfig
	recentAuthors    []uuid.UUID
	recentCategories []string
}

func newWindowState(cfg InterleaveConfig) *windowState {
	return &windowState{
		cfg:              cfg,
		recentAuthors:    make([]uuid.UUID, 0, cfg.AuthorCooldown),
		recentCategories: make([]string, 0, cfg.CategoryRun),
	}
}

// admits applies the per-window constraints in order: author cooldown,
// then category diversity.
func (ws *windowState) admits(c *ScoredCandidate) bool {
	for _, a := range ws.recentAuthors {
		if a == c.Recipe.AuthorID {
			return false
		}
	}

	cat := c.Recipe.PrimaryCategory()
	if cat != "" && ws.cfg.CategoryRun > 0 && len(ws.recentCategories) >= ws.cfg.CategoryRun {
		run := true
		for _, rc := range ws.recentCategories {
			if rc != cat {
				run = false
				break
			}
		}
		if run {
			return false
		}
	}
	return true
}

// push records an accepted candidate in both queues.
func (ws *windowState) push(c *ScoredCandidate) {
	ws.recentAuthors = append(ws.recentAuthors, c.Recipe.AuthorID)
	if len(ws.recentAuthors) > ws.cfg.AuthorCooldown {
		ws.recentAuthors = ws.recentAuthors[1:]
	}
	ws.recentCategories = append(ws.recentCategories, c.Recipe.PrimaryCategory())
	if len(ws.recentCategories) > ws.cfg.CategoryRun {
		ws.recentCategories = ws.recentCategories[1:]
	}
}

// Interleave merges two ranked pools toward the target primary ratio under
// the diversity constraints, injects exploration slots for sparse viewers,
// enforces the fresh-chunk guarantee, and finishes with the relaxed fill.
//
// The relaxed fill ignores the author/category constraints: when
// candidates are scarce, a full page beats a strictly diverse one. That
// trade-off is intentional.
func Interleave(primary, secondary []ScoredCandidate, limit int, now time.Time, cfg InterleaveConfig, opts InterleaveOptions) []ScoredCandidate {
	if limit <= 0 {
		return nil
	}

	out := make([]ScoredCandidate, 0, limit)
	seen := make(map[uuid.UUID]struct{}, limit)
	ws := newWindowState(cfg)

	accept := func(c ScoredCandidate) {
		out = append(out, c)
		seen[c.Recipe.ID] = struct{}{}
		ws.push(&c)
	}

	pi, si, ei := 0, 0, 0
	primaryTaken := 0

primaryPass:
	for len(out) < limit {
		// Exploration slot: every Nth accepted position, sparse viewers
		// get a shot at a very-new or top-trend candidate.
		if opts.Sparse && cfg.ExplorationInterval > 0 && (len(out)+1)%cfg.ExplorationInterval == 0 {
			injected := false
			for ; ei < len(opts.Exploration); ei++ {
				c := opts.Exploration[ei]
				if _, dup := seen[c.Recipe.ID]; dup {
					continue
				}
				if !ws.admits(&c) {
					continue
				}
				accept(c)
				ei++
				injected = true
				break
			}
			if injected {
				continue
			}
		}

		// Quota: how many primary items should already be in the result
		// to hit the target ratio.
		expected := int(cfg.TargetPrimaryRatio * float64(len(out)+1))

		var c ScoredCandidate
		fromPrimary := false
		switch {
		case primaryTaken < expected && pi < len(primary):
			c, fromPrimary = primary[pi], true
			pi++
		case si < len(secondary):
			c = secondary[si]
			si++
		case pi < len(primary):
			c, fromPrimary = primary[pi], true
			pi++
		default:
			// Both pools exhausted.
			break primaryPass
		}

		if _, dup := seen[c.Recipe.ID]; dup {
			continue
		}
		// Rejected candidates are skipped, not retried in this pass; the
		// relaxed fill may still pick them up.
		if !ws.admits(&c) {
			continue
		}
		accept(c)
		if fromPrimary {
			primaryTaken++
		}
	}

	all := mergedByScore(opts.Seed, primary, secondary, opts.Exploration)
	out = ensureFreshChunks(out, all, now, cfg)
	return relaxedFill(out, all, limit)
}

// mergedByScore unions the pools into one score-ordered, id-deduplicated
// slice.
func mergedByScore(seed string, pools ...[]ScoredCandidate) []ScoredCandidate {
	var all []ScoredCandidate
	seen := make(map[uuid.UUID]struct{})
	for _, p := range pools {
		for _, c := range p {
			if _, dup := seen[c.Recipe.ID]; dup {
				continue
			}
			seen[c.Recipe.ID] = struct{}{}
			all = append(all, c)
		}
	}
	SortScored(all, seed, -1)
	return all
}

// ensureFreshChunks scans the result in chunks; a chunk with no item
// younger than FreshMaxAge gets its last slot swapped for one, when the
// candidate set has an unused one.
func ensureFreshChunks(out, all []ScoredCandidate, now time.Time, cfg InterleaveConfig) []ScoredCandidate {
	if cfg.FreshChunkSize <= 0 || cfg.FreshMaxAge <= 0 {
		return out
	}

	used := make(map[uuid.UUID]struct{}, len(out))
	for i := range out {
		used[out[i].Recipe.ID] = struct{}{}
	}

	for start := 0; start < len(out); start += cfg.FreshChunkSize {
		end := start + cfg.FreshChunkSize
		if end > len(out) {
			end = len(out)
		}

		fresh := false
		for i := start; i < end; i++ {
			if out[i].Recipe.Age(now) < cfg.FreshMaxAge {
				fresh = true
				break
			}
		}
		if fresh {
			continue
		}

		for _, c := range all {
			if c.Recipe.Age(now) >= cfg.FreshMaxAge {
				continue
			}
			if _, dup := used[c.Recipe.ID]; dup {
				continue
			}
			delete(used, out[end-1].Recipe.ID)
			out[end-1] = c
			used[c.Recipe.ID] = struct{}{}
			break
		}
	}
	return out
}

// relaxedFill appends score-ordered candidates, dedup only, until the page
// reaches limit or the candidate set runs out.
func relaxedFill(out, all []ScoredCandidate, limit int) []ScoredCandidate {
	if len(out) >= limit {
		return out[:limit]
	}

	seen := make(map[uuid.UUID]struct{}, len(out))
	for i := range out {
		seen[out[i].Recipe.ID] = struct{}{}
	}

	for _, c := range all {
		if len(out) >= limit {
			break
		}
		if _, dup := seen[c.Recipe.ID]; dup {
			continue
		}
		seen[c.Recipe.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ExplorationPool extracts the injection candidates from a scored set:
// very-new low-view items first, then top-trend, best score first within
// each class.
func ExplorationPool(all []ScoredCandidate, now time.Time, cfg InterleaveConfig, seed string) []ScoredCandidate {
	var veryNew, trending []ScoredCandidate
	for _, c := range all {
		if c.Recipe.Age(now) < cfg.VeryNewMaxAge && c.Recipe.ViewCount < cfg.VeryNewMaxViews {
			veryNew = append(veryNew, c)
		} else if c.Recipe.TrendScore > 0 {
			trending = append(trending, ScoredCandidate{Recipe: c.Recipe, Score: c.Recipe.TrendScore})
		}
	}
	SortScored(veryNew, seed, -1)
	SortScored(trending, seed, -1)
	return append(veryNew, trending...)
}
