// Package repository holds the published leaderboard and its read paths.
package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/rallyboard/internal/domain/model"
	"github.com/okian/rallyboard/internal/domain/ranking"
	"github.com/okian/rallyboard/pkg/metrics"
)

// Store provides read/write access to the ranking state.
type Store interface {
	// Publish replaces the current board.
	Publish(ctx context.Context, b *Board)

	// Current returns the most recently published board. Never nil.
	Current(ctx context.Context) *Board

	// Rank returns the ranked entry for a name.
	// Returns ErrNotFound if the name is unknown.
	Rank(ctx context.Context, name string) (model.Ranked, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]model.Ranked, error)

	// Tier returns the 1-based tier n.
	// Returns ErrTierNotFound when the layout has no such tier.
	Tier(ctx context.Context, n int) (ranking.Tier, error)

	// Count returns the number of entries on the board.
	Count(ctx context.Context) int
}

// SnapshotStore publishes boards through an atomic pointer so readers never
// block writers and never observe a partial board.
type SnapshotStore struct {
	board atomic.Pointer[Board]
}

// NewSnapshotStore creates a store holding an empty board.
func NewSnapshotStore(_ context.Context, opts ...Option) *SnapshotStore {
	cfg := storeOptions{layout: ranking.DefaultLayout}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &SnapshotStore{}
	initial := cfg.initial
	if initial == nil {
		initial = EmptyBoard(cfg.layout)
	}
	s.board.Store(initial)
	return s
}

// Publish implements Store.Publish.
func (s *SnapshotStore) Publish(_ context.Context, b *Board) {
	if b == nil {
		return
	}
	s.board.Store(b)

	metrics.UpdateBoardEntries(b.Len())
	for _, t := range b.Tiers {
		metrics.UpdateTierEntries(strconv.Itoa(t.Number), len(t.Entries))
	}
	metrics.UpdateBoardLastPublishUnix(float64(b.LoadedAt.Unix()))
}

// Current implements Store.Current.
func (s *SnapshotStore) Current(_ context.Context) *Board {
	return s.board.Load()
}

// Rank implements Store.Rank.
func (s *SnapshotStore) Rank(ctx context.Context, name string) (model.Ranked, error) {
	start := time.Now()
	defer recordQuery(start)

	r, ok := s.Current(ctx).Lookup(name)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Ranked{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return r, nil
}

// TopN implements Store.TopN.
func (s *SnapshotStore) TopN(ctx context.Context, n int) ([]model.Ranked, error) {
	start := time.Now()
	defer recordQuery(start)

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	return s.Current(ctx).Top(n), nil
}

// Tier implements Store.Tier.
func (s *SnapshotStore) Tier(ctx context.Context, n int) (ranking.Tier, error) {
	start := time.Now()
	defer recordQuery(start)

	tiers := s.Current(ctx).Tiers
	if n < 1 || n > len(tiers) {
		metrics.RecordErrorByComponent("repository", "tier_not_found")
		return ranking.Tier{}, fmt.Errorf("%w: %d", ErrTierNotFound, n)
	}
	return tiers[n-1], nil
}

// Count implements Store.Count.
func (s *SnapshotStore) Count(ctx context.Context) int {
	return s.Current(ctx).Len()
}

func recordQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
