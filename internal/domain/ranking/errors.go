package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidLayout = errors.New("invalid tier layout")
)
