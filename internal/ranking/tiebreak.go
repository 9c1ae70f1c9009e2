// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Equal-score candidates are ordered by a hash of (candidate id + a
// time-slot seed). The seed rotates every 6 hours in a fixed UTC+9
// reference timezone, so order is stable within a slot (cache coherency,
// a feed that doesn't reshuffle on refresh) and rotates across slots so
// ties never go permanently stale. Authenticated viewers get a per-user
// seed; all anonymous viewers share the daily one.

// referenceOffset shifts slot boundaries to the UTC+9 reference timezone.
const referenceOffset = 9 * time.Hour

// SlotSeed returns the tie-break seed for the current 6-hour slot.
func SlotSeed(viewerID *uuid.UUID, now time.Time) string {
	ref := now.UTC().Add(referenceOffset)
	slot := ref.Hour() / 6
	if viewerID != nil {
		return fmt.Sprintf("u:%s:%d", viewerID.String(), slot)
	}
	return fmt.Sprintf("d:%s:%d", ref.Format("2006-01-02"), slot)
}

// tieHash is FNV-1a over id+seed. Any fast non-cryptographic hash works;
// only stability within a slot matters, not the exact bit pattern.
func tieHash(id, seed string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	_, _ = h.Write([]byte(seed))
	return h.Sum32()
}

// SortScored orders candidates by score descending, breaking ties by the
// slot-seeded hash ascending and finally by id for total determinism.
// decimals >= 0 rounds scores to that many decimals before comparing
// (popularity uses 1); decimals < 0 compares exact scores.
func SortScored(items []ScoredCandidate, seed string, decimals int) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := items[i].Score, items[j].Score
		if decimals >= 0 {
			si, sj = roundTo(si, decimals), roundTo(sj, decimals)
		}
		if si != sj {
			return si > sj
		}
		idI, idJ := items[i].Recipe.ID.String(), items[j].Recipe.ID.String()
		hi, hj := tieHash(idI, seed), tieHash(idJ, seed)
		if hi != hj {
			return hi < hj
		}
		return idI < idJ
	})
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
