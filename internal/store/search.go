// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ckarenz/ladle/internal/models"
	"github.com/ckarenz/ladle/internal/ranking"
)

// similarityFloor is the minimum text similarity a row needs to enter the
// candidate set on its own. Rows below it can still qualify through an
// alternate-title match, carrying their text-only similarity.
const similarityFloor = 0.05

// SearchSimilarity scores candidates with DuckDB's jaro_winkler_similarity
// over title and ingredients, keeping the better of the two. The alternate
// title does not feed the similarity value; it only admits rows, so the
// engine's alias bonus is the sole alt-title contribution to the blend.
// A catalog error on the function maps to ErrSimilarityUnavailable so the
// engine can switch to substring matching; everything else is a genuine
// query failure.
func (s *Store) SearchSimilarity(ctx context.Context, query string, w ranking.Window) ([]ranking.SimilarCandidate, error) {
	q := fmt.Sprintf(`SELECT * FROM (
		SELECT `+recipeColumns+`,
			GREATEST(
				jaro_winkler_similarity(LOWER(r.title), ?),
				jaro_winkler_similarity(LOWER(r.ingredients), ?)
			) AS sim
		FROM recipes r
		WHERE `+visibilityClause+`
	) WHERE sim >= %v OR (alt_title <> '' AND LOWER(alt_title) LIKE ?)
	ORDER BY sim DESC, trend_score DESC
	LIMIT ?`, similarityFloor)

	pattern := "%" + query + "%"
	rows, cancel, err := s.query(ctx, q, query, query, pattern, w.Limit)
	if err != nil {
		if isMissingFunction(err) {
			return nil, ranking.ErrSimilarityUnavailable
		}
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()

	var out []ranking.SimilarCandidate
	for rows.Next() {
		var (
			r       models.Recipe
			id      string
			author  string
			tagsCSV string
			sim     float64
		)
		err := rows.Scan(
			&id, &author, &r.Title, &r.AltTitle, &r.Summary, &r.Ingredients,
			&r.ImageURL, &r.Difficulty, &r.DurationMinutes, &tagsCSV, &r.CreatedAt,
			&r.ViewCount, &r.Engagement.Likes, &r.Engagement.Comments,
			&r.Engagement.Saves, &r.TrendScore, &sim,
		)
		if err != nil {
			return nil, fmt.Errorf("scan similarity row: %w", err)
		}
		if r.ID, err = parseUUID(id); err != nil {
			return nil, err
		}
		if r.AuthorID, err = parseUUID(author); err != nil {
			return nil, err
		}
		r.Tags = parseTagsCSV(tagsCSV)
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("recipe %s failed validation: %w", id, err)
		}
		out = append(out, ranking.SimilarCandidate{Recipe: r, Similarity: sim})
	}
	return out, rows.Err()
}

// SearchSubstring is the degraded path: case-insensitive containment over
// title, alternate title, and ingredients, trend-ordered.
func (s *Store) SearchSubstring(ctx context.Context, query string, w ranking.Window) ([]models.Recipe, error) {
	q := `SELECT ` + recipeColumns + `
	FROM recipes r
	WHERE ` + visibilityClause + `
		AND (LOWER(r.title) LIKE ? OR LOWER(r.alt_title) LIKE ? OR LOWER(r.ingredients) LIKE ?)
	ORDER BY r.trend_score DESC, r.id
	LIMIT ?`

	pattern := "%" + query + "%"
	rows, cancel, err := s.query(ctx, q, pattern, pattern, pattern, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()
	return scanRecipes(rows)
}

// isMissingFunction detects the catalog error DuckDB raises when a scalar
// function does not exist in this build.
func isMissingFunction(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "catalog error") &&
		strings.Contains(msg, "jaro_winkler_similarity")
}
