package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/rallyboard/internal/domain/dedupe"
	"github.com/okian/rallyboard/internal/domain/model"
	"github.com/okian/rallyboard/internal/domain/parser"
	"github.com/okian/rallyboard/internal/domain/ranking"
)

// Board is an immutable ranked view of one working set. Readers must not
// modify the slices it exposes.
type Board struct {
	Revision string
	LoadedAt time.Time
	Source   string
	Layout   ranking.Layout
	Entries  []model.Ranked
	Tiers    []ranking.Tier
	Report   parser.Report

	// position by name, 0-based
	byName map[string]int
}

// BoardOption customises a Board at construction.
type BoardOption func(*Board)

// WithSource records where the lines came from, e.g. a file path.
func WithSource(src string) BoardOption {
	return func(b *Board) {
		b.Source = src
	}
}

// WithReport attaches the parse report that produced the set.
func WithReport(r parser.Report) BoardOption {
	return func(b *Board) {
		b.Report = r
	}
}

// NewBoard ranks set under layout and indexes the result.
func NewBoard(set *dedupe.Set, layout ranking.Layout, opts ...BoardOption) *Board {
	ranked := ranking.Rank(set, layout)
	b := &Board{
		Revision: uuid.NewString(),
		LoadedAt: time.Now(),
		Layout:   layout,
		Entries:  ranked,
		Tiers:    ranking.Partition(ranked, layout),
		byName:   make(map[string]int, len(ranked)),
	}
	for _, opt := range opts {
		opt(b)
	}
	for i, r := range ranked {
		b.byName[r.Name] = i
	}
	return b
}

// EmptyBoard returns a board with no entries.
func EmptyBoard(layout ranking.Layout, opts ...BoardOption) *Board {
	return NewBoard(dedupe.New(), layout, opts...)
}

// Len returns the number of ranked entries.
func (b *Board) Len() int {
	return len(b.Entries)
}

// Lookup returns the ranked entry for an exact name.
func (b *Board) Lookup(name string) (model.Ranked, bool) {
	i, ok := b.byName[name]
	if !ok {
		return model.Ranked{}, false
	}
	return b.Entries[i], true
}

// Top returns up to n leading entries.
func (b *Board) Top(n int) []model.Ranked {
	n = min(max(n, 0), len(b.Entries))
	return b.Entries[:n:n]
}

// Lines renders every entry in the canonical round-trip format.
func (b *Board) Lines() []string {
	out := make([]string, len(b.Entries))
	for i, r := range b.Entries {
		out[i] = r.Line()
	}
	return out
}
