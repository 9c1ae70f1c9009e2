// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ckarenz/ladle/internal/models"
	"github.com/ckarenz/ladle/internal/ranking"
)

// recipeColumns is the canonical select list; scanRecipe must match it.
const recipeColumns = `r.id::VARCHAR, r.author_id::VARCHAR, r.title, r.alt_title, r.summary, r.ingredients,
	r.image_url, r.difficulty, r.duration_minutes, r.tags, r.created_at,
	r.view_count, r.like_count, r.comment_count, r.save_count, r.trend_score`

// visibilityClause is applied to every candidate read. Unpublished,
// hidden, and deactivated-author recipes never leave the store.
const visibilityClause = `r.published AND NOT r.hidden
	AND EXISTS (SELECT 1 FROM users u WHERE u.id = r.author_id AND u.active)`

// buildWindowQuery renders a candidate window into SQL. Split out for
// testability; the WHERE composition is the part worth covering.
func buildWindowQuery(w ranking.Window) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT ")
	sb.WriteString(recipeColumns)
	sb.WriteString(" FROM recipes r WHERE ")
	sb.WriteString(visibilityClause)

	if w.Filter.Tag != "" {
		// tags is a lowercase CSV column; match a whole entry.
		sb.WriteString(" AND (',' || r.tags || ',') LIKE ?")
		args = append(args, "%,"+strings.ToLower(w.Filter.Tag)+",%")
	}
	if w.Filter.Difficulty != "" {
		sb.WriteString(" AND r.difficulty = ?")
		args = append(args, w.Filter.Difficulty)
	}
	if w.Filter.MaxDurationMinutes > 0 {
		sb.WriteString(" AND r.duration_minutes > 0 AND r.duration_minutes <= ?")
		args = append(args, w.Filter.MaxDurationMinutes)
	}
	if len(w.Filter.AuthorIDs) > 0 {
		sb.WriteString(" AND r.author_id IN (")
		for i, id := range w.Filter.AuthorIDs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("?")
			args = append(args, id.String())
		}
		sb.WriteString(")")
	}
	if !w.Filter.CreatedAfter.IsZero() {
		sb.WriteString(" AND r.created_at > ?")
		args = append(args, w.Filter.CreatedAfter)
	}

	switch w.Order {
	case ranking.OrderTrend:
		sb.WriteString(" ORDER BY r.trend_score DESC, r.id")
	default:
		if w.After != nil {
			sb.WriteString(" AND (r.created_at < ? OR (r.created_at = ? AND r.id < ?))")
			args = append(args, w.After.CreatedAt, w.After.CreatedAt, w.After.ID.String())
		}
		sb.WriteString(" ORDER BY r.created_at DESC, r.id DESC")
	}

	sb.WriteString(" LIMIT ?")
	args = append(args, w.Limit)
	return sb.String(), args
}

// Query returns an ordered window of visible candidates.
func (s *Store) Query(ctx context.Context, w ranking.Window) ([]models.Recipe, error) {
	if w.Limit <= 0 {
		return nil, nil
	}
	q, args := buildWindowQuery(w)
	rows, cancel, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("window query: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()
	return scanRecipes(rows)
}

// QueryByIDs hydrates precomputed id lists against live visibility.
// Missing and hidden ids are simply absent from the result.
func (s *Store) QueryByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT ")
	sb.WriteString(recipeColumns)
	sb.WriteString(" FROM recipes r WHERE ")
	sb.WriteString(visibilityClause)
	sb.WriteString(" AND r.id IN (")
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
		args = append(args, id.String())
	}
	sb.WriteString(")")

	rows, cancel, err := s.query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query by ids: %w", err)
	}
	defer cancel()
	defer func() { _ = rows.Close() }()
	return scanRecipes(rows)
}

func scanRecipes(rows *sql.Rows) ([]models.Recipe, error) {
	var out []models.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecipe(rows *sql.Rows) (models.Recipe, error) {
	var (
		r       models.Recipe
		id      string
		author  string
		tagsCSV string
	)
	err := rows.Scan(
		&id, &author, &r.Title, &r.AltTitle, &r.Summary, &r.Ingredients,
		&r.ImageURL, &r.Difficulty, &r.DurationMinutes, &tagsCSV, &r.CreatedAt,
		&r.ViewCount, &r.Engagement.Likes, &r.Engagement.Comments,
		&r.Engagement.Saves, &r.TrendScore,
	)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("scan recipe: %w", err)
	}
	if r.ID, err = parseUUID(id); err != nil {
		return models.Recipe{}, err
	}
	if r.AuthorID, err = parseUUID(author); err != nil {
		return models.Recipe{}, err
	}
	r.Tags = parseTagsCSV(tagsCSV)
	if err := r.Validate(); err != nil {
		return models.Recipe{}, fmt.Errorf("recipe %s failed validation: %w", id, err)
	}
	return r, nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse uuid %q: %w", s, err)
	}
	return id, nil
}

// parseTagsCSV splits the stored CSV into tags, skipping empty entries.
func parseTagsCSV(csv string) []models.Tag {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	tags := make([]models.Tag, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			tags = append(tags, models.Tag{Name: name})
		}
	}
	return tags
}
