// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package models

import "github.com/google/uuid"

// RankedItem is one entry of a ranked page: the candidate's display fields
// plus its final score and the viewer-relative flags attached by the
// caller's enrichment step (not computed inside the ranking engine).
type RankedItem struct {
	Recipe Recipe  `json:"recipe"`
	Score  float64 `json:"score"`

	IsLiked bool `json:"is_liked"`
	IsSaved bool `json:"is_saved"`
}

// Page is the assembled result of one ranking pass.
//
// NextCursor is an opaque keyset token; nil means the scan is exhausted.
// Cursor formats differ per endpoint and must not be mixed across endpoints.
// A cursor pasted from another endpoint decodes structurally and produces a
// nonsensical page rather than an error.
type Page struct {
	Items      []RankedItem `json:"items"`
	NextCursor *string      `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`

	// NewCount is the number of items on this page younger than 24 hours.
	NewCount int `json:"new_count,omitempty"`
}

// IDs returns the recipe ids of the page in order.
func (p *Page) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Items))
	for i := range p.Items {
		ids = append(ids, p.Items[i].Recipe.ID)
	}
	return ids
}

// Clone returns a copy of the page with its own Items slice. Cached pages
// are handed out as clones: per-viewer enrichment mutates items in place,
// and a shared slice would leak one viewer's flags into another's response.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Items = make([]RankedItem, len(p.Items))
	copy(cp.Items, p.Items)
	if p.NextCursor != nil {
		cursor := *p.NextCursor
		cp.NextCursor = &cursor
	}
	return &cp
}

// PrecomputedItem is one entry of a precomputed model's ranked id list.
type PrecomputedItem struct {
	RecipeID string  `json:"recipe_id"`
	Score    float64 `json:"score"`
}
