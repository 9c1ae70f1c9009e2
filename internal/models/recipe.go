// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package models defines the typed records exchanged between the store
// adapter, the ranking engine, and the HTTP layer.
//
// Rows read from the candidate store are mapped into these structs at the
// adapter boundary and validated there, so the ranking code never sees a
// partially populated record.
package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Tag is a single recipe tag. The first tag of a recipe doubles as its
// primary category for diversity purposes.
type Tag struct {
	Name string `json:"name" validate:"required"`
}

// Engagement holds the aggregate engagement counters for a recipe.
type Engagement struct {
	Likes    int64 `json:"likes" validate:"gte=0"`
	Comments int64 `json:"comments" validate:"gte=0"`
	Saves    int64 `json:"saves" validate:"gte=0"`
}

// Recipe is an immutable candidate snapshot read from the store for the
// duration of one request. The ranking engine never mutates it.
type Recipe struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	AuthorID uuid.UUID `json:"author_id" validate:"required"`

	Title           string `json:"title" validate:"required"`
	AltTitle        string `json:"alt_title,omitempty"`
	Summary         string `json:"summary,omitempty"`
	Ingredients     string `json:"ingredients,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	Difficulty      string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	DurationMinutes int    `json:"duration_minutes,omitempty" validate:"gte=0"`

	Tags      []Tag     `json:"tags"`
	CreatedAt time.Time `json:"created_at" validate:"required"`

	ViewCount  int64      `json:"view_count" validate:"gte=0"`
	Engagement Engagement `json:"engagement"`

	// TrendScore is the externally maintained decayed-engagement counter.
	// It is refreshed by a batch job outside the ranking engine.
	TrendScore float64 `json:"trend_score"`

	// IsFollowedAuthor is viewer-relative and set by the caller after the
	// follow graph lookup; zero value for anonymous requests.
	IsFollowedAuthor bool `json:"is_followed_author,omitempty"`
}

// PrimaryCategory returns the first tag name, lowercased, or "" when the
// recipe has no tags.
func (r *Recipe) PrimaryCategory() string {
	if len(r.Tags) == 0 {
		return ""
	}
	return strings.ToLower(r.Tags[0].Name)
}

// Age returns the recipe age relative to now. Never negative; clock skew
// between the store and the app clamps to zero.
func (r *Recipe) Age(now time.Time) time.Duration {
	age := now.Sub(r.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}

// validate is the shared validator instance. Struct tag parsing is cached
// internally, so a single instance serves all boundary checks.
var validate = validator.New()

// Validate checks the required fields populated at the store boundary.
func (r *Recipe) Validate() error {
	return validate.Struct(r)
}
