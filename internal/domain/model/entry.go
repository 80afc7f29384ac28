// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
)

// Entry is one rally creator's best recorded damage plus the partner label.
// Name is the dedupe key; it is compared case-sensitively.
type Entry struct {
	Name    string  // rally creator, unique within a working set
	Score   float64 // damage dealt, in millions
	Partner string  // free-text label of the collaborator
}

// Ranked is an Entry at its computed position in a sorted board.
type Ranked struct {
	Entry
	Rank int // 1-based position in score order
	Tier int // 1-based tier number
}

// FormatScore renders a score the way it is written in the source lines:
// shortest decimal form, no forced trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// DisplayText renders the "Highest Damage (with Person)" column, e.g. "279.7m with Ultimate Bluey".
func (e Entry) DisplayText() string {
	return FormatScore(e.Score) + "m with " + e.Partner
}

// FormatLine renders the canonical round-trip line for e at rank.
func FormatLine(rank int, e Entry) string {
	return fmt.Sprintf("%d. %s (%s)", rank, e.Name, e.DisplayText())
}

// Line renders the canonical round-trip line at the entry's computed rank.
func (r Ranked) Line() string {
	return FormatLine(r.Rank, r.Entry)
}
