// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package store

import (
	"context"
	"fmt"
)

// Schema notes:
//
//   - tags is a comma-separated lowercase list. Tag counts per recipe are
//     small (typically under 10) and the only store-side tag operation is
//     a containment check, so a CSV column beats a join table here.
//   - engagement counters are denormalized onto recipes and bumped by the
//     write path; the ranking engine only reads them.
//   - trend_score is refreshed by the trend job, never computed inline.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS recipes (
		id UUID PRIMARY KEY,
		author_id UUID NOT NULL,
		title VARCHAR NOT NULL,
		alt_title VARCHAR NOT NULL DEFAULT '',
		summary VARCHAR NOT NULL DEFAULT '',
		ingredients VARCHAR NOT NULL DEFAULT '',
		image_url VARCHAR NOT NULL DEFAULT '',
		difficulty VARCHAR NOT NULL DEFAULT 'medium',
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		tags VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		published BOOLEAN NOT NULL DEFAULT TRUE,
		hidden BOOLEAN NOT NULL DEFAULT FALSE,
		view_count BIGINT NOT NULL DEFAULT 0,
		like_count BIGINT NOT NULL DEFAULT 0,
		comment_count BIGINT NOT NULL DEFAULT 0,
		save_count BIGINT NOT NULL DEFAULT 0,
		trend_score DOUBLE NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS follows (
		follower_id UUID NOT NULL,
		author_id UUID NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		PRIMARY KEY (follower_id, author_id)
	)`,

	// kind is 'like' or 'save'. Comments live elsewhere; only their count
	// lands on recipes.
	`CREATE TABLE IF NOT EXISTS reactions (
		user_id UUID NOT NULL,
		recipe_id UUID NOT NULL,
		kind VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, recipe_id, kind)
	)`,

	`CREATE TABLE IF NOT EXISTS recommendation_models (
		id VARCHAR PRIMARY KEY,
		active BOOLEAN NOT NULL DEFAULT FALSE,
		trained_at TIMESTAMP NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS recommendations (
		model_id VARCHAR NOT NULL,
		user_id UUID NOT NULL,
		recipe_id UUID NOT NULL,
		score DOUBLE NOT NULL,
		rank INTEGER NOT NULL,
		PRIMARY KEY (model_id, user_id, recipe_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_recipes_created ON recipes (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_author ON recipes (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_trend ON recipes (trend_score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_follows_follower ON follows (follower_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reactions_user ON reactions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recs_user ON recommendations (user_id, model_id)`,
}

// Migrate applies the schema. Every statement is idempotent, so reruns
// on startup are safe.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	s.logger.Debug().Int("statements", len(migrations)).Msg("schema migrated")
	return nil
}
