// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func validRecipe() Recipe {
	return Recipe{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		Title:     "Braised leeks",
		Tags:      []Tag{{Name: "Soup"}, {Name: "Winter"}},
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ViewCount: 10,
	}
}

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Recipe)
		wantErr bool
	}{
		{"valid", func(r *Recipe) {}, false},
		{"missing id", func(r *Recipe) { r.ID = uuid.Nil }, true},
		{"missing author", func(r *Recipe) { r.AuthorID = uuid.Nil }, true},
		{"missing title", func(r *Recipe) { r.Title = "" }, true},
		{"missing created_at", func(r *Recipe) { r.CreatedAt = time.Time{} }, true},
		{"negative views", func(r *Recipe) { r.ViewCount = -1 }, true},
		{"bad difficulty", func(r *Recipe) { r.Difficulty = "impossible" }, true},
		{"good difficulty", func(r *Recipe) { r.Difficulty = "medium" }, false},
		{"no tags is fine", func(r *Recipe) { r.Tags = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPrimaryCategory(t *testing.T) {
	r := validRecipe()
	if got := r.PrimaryCategory(); got != "soup" {
		t.Errorf("PrimaryCategory() = %q, want %q", got, "soup")
	}

	r.Tags = nil
	if got := r.PrimaryCategory(); got != "" {
		t.Errorf("PrimaryCategory() with no tags = %q, want empty", got)
	}
}

func TestRecipeAge(t *testing.T) {
	now := time.Now()
	r := validRecipe()
	r.CreatedAt = now.Add(-90 * time.Minute)
	if got := r.Age(now); got != 90*time.Minute {
		t.Errorf("Age() = %v, want 90m", got)
	}

	// A store row timestamped ahead of the app clock clamps to zero.
	r.CreatedAt = now.Add(time.Minute)
	if got := r.Age(now); got != 0 {
		t.Errorf("Age() with future timestamp = %v, want 0", got)
	}
}

func TestPageIDs(t *testing.T) {
	a, b := validRecipe(), validRecipe()
	p := Page{Items: []RankedItem{{Recipe: a}, {Recipe: b}}}
	ids := p.IDs()
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != b.ID {
		t.Errorf("IDs() = %v, want [%s %s]", ids, a.ID, b.ID)
	}
}

func TestPageCloneIsolatesItems(t *testing.T) {
	cursor := "abc"
	p := &Page{
		Items:      []RankedItem{{Recipe: validRecipe(), Score: 1.5}},
		NextCursor: &cursor,
		HasMore:    true,
	}

	cp := p.Clone()
	cp.Items[0].IsLiked = true
	cp.Items[0].IsSaved = true
	*cp.NextCursor = "xyz"

	if p.Items[0].IsLiked || p.Items[0].IsSaved {
		t.Error("mutating the clone leaked flags into the original")
	}
	if *p.NextCursor != "abc" {
		t.Errorf("clone shares the cursor pointer: %q", *p.NextCursor)
	}
	if cp.Items[0].Recipe.ID != p.Items[0].Recipe.ID {
		t.Error("clone dropped item content")
	}
}
