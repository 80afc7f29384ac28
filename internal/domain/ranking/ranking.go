// Package ranking orders a working set by score and groups it into tiers.
package ranking

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/rallyboard/internal/domain/dedupe"
	"github.com/okian/rallyboard/internal/domain/model"
)

// DefaultLayout puts ranks 1-12 in Tier 1, 13-32 in Tier 2 and the rest in Tier 3.
var DefaultLayout = Layout{Sizes: []int{12, 20}}

// Layout describes tier boundaries. Sizes holds the size of every tier but
// the last one; the last tier takes whatever remains.
type Layout struct {
	Sizes []int
}

// NewLayout builds and validates a layout from tier sizes.
func NewLayout(sizes ...int) (Layout, error) {
	l := Layout{Sizes: slices.Clone(sizes)}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that every bounded tier has a positive size.
func (l Layout) Validate() error {
	for i, n := range l.Sizes {
		if n < 1 {
			return fmt.Errorf("%w: tier %d size %d", ErrInvalidLayout, i+1, n)
		}
	}
	return nil
}

// Count returns the number of tiers the layout produces.
func (l Layout) Count() int {
	return len(l.Sizes) + 1
}

// TierOf returns the 1-based tier for a 1-based rank.
func (l Layout) TierOf(rank int) int {
	upper := 0
	for i, n := range l.Sizes {
		upper += n
		if rank <= upper {
			return i + 1
		}
	}
	return l.Count()
}

// Tier is a contiguous slice of the ranked board.
type Tier struct {
	Number  int
	Name    string
	Entries []model.Ranked
}

// TierName returns the display name of tier n.
func TierName(n int) string {
	return fmt.Sprintf("Tier %d", n)
}

// Rank sorts the set by score, highest first. Equal scores keep the order in
// which they were last inserted. Ranks are sequential and never shared.
func Rank(set *dedupe.Set, layout Layout) []model.Ranked {
	entries := set.Entries()
	slices.SortStableFunc(entries, func(a, b model.Entry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	out := make([]model.Ranked, len(entries))
	for i, e := range entries {
		rank := i + 1
		out[i] = model.Ranked{Entry: e, Rank: rank, Tier: layout.TierOf(rank)}
	}
	return out
}

// Partition splits ranked entries into layout.Count() tiers. Short input
// leaves trailing tiers empty; it never fails.
func Partition(ranked []model.Ranked, layout Layout) []Tier {
	tiers := make([]Tier, layout.Count())
	start := 0
	for i := range tiers {
		end := len(ranked)
		if i < len(layout.Sizes) {
			end = min(start+layout.Sizes[i], len(ranked))
		}
		tiers[i] = Tier{
			Number:  i + 1,
			Name:    TierName(i + 1),
			Entries: ranked[start:end:end],
		}
		start = end
	}
	return tiers
}
