// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// FollowingIDs returns the authors the user follows. Empty slice for an
// unknown user; the follow graph has no notion of a missing viewer.
func (s *Store) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, cancel, err := s.query(ctx,
		`SELECT author_id::VARCHAR FROM follows WHERE follower_id = ?`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("following ids: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	var out []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan following id: %w", err)
		}
		id, err := parseUUID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// IsFollowing reports a single follow edge.
func (s *Store) IsFollowing(ctx context.Context, follower, author uuid.UUID) (bool, error) {
	rows, cancel, err := s.query(ctx,
		`SELECT 1 FROM follows WHERE follower_id = ? AND author_id = ?`,
		follower.String(), author.String())
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()
	return rows.Next(), rows.Err()
}

// LikedTags returns the distinct tags of recipes the user liked.
func (s *Store) LikedTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.reactionTags(ctx, userID, "like")
}

// SavedTags returns the distinct tags of recipes the user saved.
func (s *Store) SavedTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.reactionTags(ctx, userID, "save")
}

// reactionTags collects the tag CSVs of reacted-to recipes and flattens
// them in Go. The per-user reaction set is small, so splitting client-side
// is cheaper than unnesting in SQL.
func (s *Store) reactionTags(ctx context.Context, userID uuid.UUID, kind string) ([]string, error) {
	rows, cancel, err := s.query(ctx,
		`SELECT r.tags FROM reactions x
		 JOIN recipes r ON r.id = x.recipe_id
		 WHERE x.user_id = ? AND x.kind = ? AND r.tags <> ''`,
		userID.String(), kind)
	if err != nil {
		return nil, fmt.Errorf("%s tags: %w", kind, err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	seen := make(map[string]struct{})
	var out []string
	for rows.Next() {
		var csv string
		if err := rows.Scan(&csv); err != nil {
			return nil, fmt.Errorf("scan %s tags: %w", kind, err)
		}
		for _, t := range parseTagsCSV(csv) {
			if _, dup := seen[t.Name]; dup {
				continue
			}
			seen[t.Name] = struct{}{}
			out = append(out, t.Name)
		}
	}
	return out, rows.Err()
}

// ViewerFlags reports which of the given recipes the viewer liked and
// saved, for page enrichment after ranking.
func (s *Store) ViewerFlags(ctx context.Context, viewerID uuid.UUID, recipeIDs []uuid.UUID) (liked, saved map[uuid.UUID]bool, err error) {
	liked = make(map[uuid.UUID]bool)
	saved = make(map[uuid.UUID]bool)
	if len(recipeIDs) == 0 {
		return liked, saved, nil
	}

	q := `SELECT recipe_id::VARCHAR, kind FROM reactions WHERE user_id = ? AND recipe_id IN (`
	args := []any{viewerID.String()}
	for i, id := range recipeIDs {
		if i > 0 {
			q += ", "
		}
		q += "?"
		args = append(args, id.String())
	}
	q += ")"

	rows, cancel, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("viewer flags: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var raw, kind string
		if err := rows.Scan(&raw, &kind); err != nil {
			return nil, nil, fmt.Errorf("scan viewer flag: %w", err)
		}
		id, perr := parseUUID(raw)
		if perr != nil {
			return nil, nil, perr
		}
		switch kind {
		case "like":
			liked[id] = true
		case "save":
			saved[id] = true
		}
	}
	return liked, saved, rows.Err()
}
