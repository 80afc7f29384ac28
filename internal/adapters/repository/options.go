package repository

import "github.com/okian/rallyboard/internal/domain/ranking"

type storeOptions struct {
	layout  ranking.Layout
	initial *Board
}

// Option applies a configuration option to the SnapshotStore.
type Option func(*storeOptions)

// WithLayout sets the tier layout of the initial empty board.
func WithLayout(l ranking.Layout) Option {
	return func(o *storeOptions) {
		o.layout = l
	}
}

// WithInitialBoard publishes b instead of an empty board.
func WithInitialBoard(b *Board) Option {
	return func(o *storeOptions) {
		if b != nil {
			o.initial = b
		}
	}
}
