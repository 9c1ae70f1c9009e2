// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/models"
)

// ActiveModel returns the current recommendation model id, or "" when no
// model is marked active. Multiple active rows would be a batch-job bug;
// the newest wins.
func (s *Store) ActiveModel(ctx context.Context) (string, error) {
	rows, cancel, err := s.query(ctx,
		`SELECT id FROM recommendation_models WHERE active ORDER BY trained_at DESC LIMIT 1`)
	if err != nil {
		return "", fmt.Errorf("active model: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return "", rows.Err()
	}
	var id string
	if err := rows.Scan(&id); err != nil {
		return "", fmt.Errorf("scan model id: %w", err)
	}
	return id, rows.Err()
}

// RecommendationsFor returns the model's ranked list for a user, best
// rank first. Scores are the model's own, on whatever scale it emits.
func (s *Store) RecommendationsFor(ctx context.Context, userID uuid.UUID, modelID string) ([]models.PrecomputedItem, error) {
	rows, cancel, err := s.query(ctx,
		`SELECT recipe_id::VARCHAR, score FROM recommendations
		 WHERE user_id = ? AND model_id = ?
		 ORDER BY rank`,
		userID.String(), modelID)
	if err != nil {
		return nil, fmt.Errorf("recommendations for %s: %w", userID, err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	var out []models.PrecomputedItem
	for rows.Next() {
		var item models.PrecomputedItem
		if err := rows.Scan(&item.RecipeID, &item.Score); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
