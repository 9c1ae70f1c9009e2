// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package store

import (
	"context"
	"fmt"
	"time"
)

// RefreshTrendScores recomputes the denormalized trend counter for every
// recipe from its engagement mix with a 48h exponential decay. The trend
// job calls this on a schedule; the ranking engine only ever reads the
// result.
func (s *Store) RefreshTrendScores(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recipes SET trend_score =
			exp(-date_diff('minute', created_at, CAST(? AS TIMESTAMP)) / (48.0 * 60.0)) *
			ln(1 + 0.5 * view_count + like_count + 2 * comment_count + 1.5 * save_count)`,
		now.UTC())
	if err != nil {
		return 0, fmt.Errorf("refresh trend scores: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// DuckDB reports affected rows; an error here is informational only.
		s.logger.Debug().Err(err).Msg("rows affected unavailable")
		return 0, nil
	}
	return n, nil
}
