package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrTierNotFound = errors.New("tier not found")
)
