// Package types contains common types used across the application
package types

import (
	"github.com/okian/rallyboard/internal/domain/model"
	"github.com/okian/rallyboard/internal/domain/ranking"
)

// Entry represents a leaderboard row as the display adapters see it.
type Entry struct {
	Rank    int     `json:"rank" yaml:"rank"`
	Tier    int     `json:"tier" yaml:"tier"`
	Name    string  `json:"name" yaml:"name"`
	Score   float64 `json:"score" yaml:"score"`
	Partner string  `json:"partner" yaml:"partner"`
	Display string  `json:"display" yaml:"display"`
}

// Tier is a named group of rows.
type Tier struct {
	Number  int     `json:"number" yaml:"number"`
	Name    string  `json:"name" yaml:"name"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// FromRanked converts a ranked domain entry into a row.
func FromRanked(r model.Ranked) Entry {
	return Entry{
		Rank:    r.Rank,
		Tier:    r.Tier,
		Name:    r.Name,
		Score:   r.Score,
		Partner: r.Partner,
		Display: r.DisplayText(),
	}
}

// FromRankedSlice converts ranked entries in order. It never returns nil.
func FromRankedSlice(in []model.Ranked) []Entry {
	out := make([]Entry, 0, len(in))
	for _, r := range in {
		out = append(out, FromRanked(r))
	}
	return out
}

// FromTier converts a ranking tier into its display form.
func FromTier(t ranking.Tier) Tier {
	return Tier{Number: t.Number, Name: t.Name, Entries: FromRankedSlice(t.Entries)}
}

// FromTiers converts every tier in order.
func FromTiers(in []ranking.Tier) []Tier {
	out := make([]Tier, 0, len(in))
	for _, t := range in {
		out = append(out, FromTier(t))
	}
	return out
}
