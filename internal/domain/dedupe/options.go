package dedupe

// options collects construction settings for a Set.
type options struct {
	capacity int
}

// Option applies a configuration option to a Set.
type Option func(*options)

// WithCapacity pre-sizes the name index. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
