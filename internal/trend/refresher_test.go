// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

package trend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingStore struct {
	calls atomic.Int64
	err   error
}

func (c *countingStore) RefreshTrendScores(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestRefresherRunsOnCadence(t *testing.T) {
	store := &countingStore{}
	r := NewRefresher(store, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop on cancel")
	}

	if n := store.calls.Load(); n < 2 {
		t.Errorf("refreshed %d times in 100ms at 10ms cadence, want >= 2", n)
	}
}

func TestRefresherKeepsGoingAfterErrors(t *testing.T) {
	store := &countingStore{err: errors.New("db locked")}
	r := NewRefresher(store, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = r.Serve(ctx)

	if n := store.calls.Load(); n < 2 {
		t.Errorf("service must retry after failures, got %d calls", n)
	}
}
