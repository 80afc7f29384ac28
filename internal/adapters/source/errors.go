package source

import "errors"

// Sentinel errors for the data file source.
var (
	ErrEmptyPath = errors.New("data file path is empty")
)
