// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package ranking

import (
	"encoding/base64"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Cursor tokens are base64-encoded JSON keyset records. Three formats
// exist, one per ordering:
//
//   - recency:  {"id": ...}
//   - feed:     {"id": ..., "created_at": ...}
//   - score:    {"id": ..., "score": ...}
//
// Tokens are opaque, unsigned, and not namespaced per endpoint. Mixing
// cursors across endpoints is undefined: the token decodes structurally
// and yields a nonsensical page, never an error. Forging a cursor affects
// pagination continuity only, not authorization.
//
// Decoding a malformed token never fails the request; it degrades to
// "no cursor", i.e. the first page.

// recencyCursor resumes a simple recency scan.
type recencyCursor struct {
	ID uuid.UUID `json:"id"`
}

// feedCursor resumes a (created_at, id) keyset scan.
type feedCursor struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// scoreCursor resumes a score-ordered scan (popularity, search,
// recommended).
type scoreCursor struct {
	ID    uuid.UUID `json:"id"`
	Score float64   `json:"score"`
}

// encodeCursor serializes any cursor record to an opaque token.
func encodeCursor(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Cursor records are plain structs; marshaling cannot fail in
		// practice. An empty token means "no cursor" to every decoder.
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// decodeCursorInto decodes a token into dst. Returns false on any decode
// failure: bad base64, bad JSON, wrong shape.
func decodeCursorInto(token string, dst any) bool {
	if token == "" {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func decodeRecencyCursor(token string) *recencyCursor {
	var c recencyCursor
	if !decodeCursorInto(token, &c) || c.ID == uuid.Nil {
		return nil
	}
	return &c
}

func decodeFeedCursor(token string) *feedCursor {
	var c feedCursor
	if !decodeCursorInto(token, &c) || c.ID == uuid.Nil || c.CreatedAt.IsZero() {
		return nil
	}
	return &c
}

func decodeScoreCursor(token string) *scoreCursor {
	var c scoreCursor
	if !decodeCursorInto(token, &c) || c.ID == uuid.Nil {
		return nil
	}
	return &c
}
