package export

import "errors"

// Sentinel errors for exporters.
var (
	ErrUnknownFormat = errors.New("unknown output format")
)
