// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package ranking implements the candidate retrieval and blended ranking
// engine behind the four read endpoints: home feed, popular, recommended,
// and search.
//
// # Architecture
//
// All four operations share one shape: pull an oversized candidate pool
// from the store, compute a score per candidate, stabilize ties, merge
// pools under diversity constraints, paginate with an opaque keyset
// cursor, and degrade gracefully when signal is thin.
//
//   - Cursor codec: base64 JSON keyset tokens, one format per ordering
//   - Score calculator: four pure functions over (candidate, now, context)
//   - Tie-breaker: time-slot-seeded hash, stable within a 6-hour window
//   - Interleaver: ratio-quota merge with author/category constraints
//   - Fallback orchestrator: precomputed -> heuristic -> popularity
//
// # Design Principles
//
//   - Pure and storage-agnostic: collaborators are injected interfaces
//   - Deterministic: same candidate set and time slot, same order
//   - Never under-filled: relaxed fill guarantees page size when data exists
//   - Errors cross the boundary only for genuine store failures; bad
//     cursors, cold starts, and diversity shortfalls are absorbed
//
// # Usage
//
//	engine := ranking.NewEngine(store, follows, profiles, recs,
//	    searchCache, cfg, logger)
//	page, err := engine.HomeFeed(ctx, ranking.FeedRequest{
//	    ViewerID: &viewer,
//	    Limit:    20,
//	})
//
// # Thread Safety
//
// The engine holds no per-request state; the only shared mutable state is
// the injected search result cache, which is safe for concurrent use.
package ranking
