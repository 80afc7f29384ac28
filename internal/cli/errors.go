package cli

import "errors"

// Command errors.
var (
	ErrNoOutput         = errors.New("nothing to export: pass --xlsx or --chart")
	ErrInvalidTierSizes = errors.New("invalid tier sizes")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrUnsorted         = errors.New("leaderboard is not sorted")
	ErrMismatch         = errors.New("leaderboard does not match local ranking")
)
