package dedupe

const defaultMaxSize = 10_000

type options struct {
	maxSize int
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*options)

// WithMaxSize sets the maximum number of keys kept in memory.
// A non-positive size disables de-duplication entirely.
func WithMaxSize(maxSize int) Option {
	return func(o *options) {
		o.maxSize = maxSize
	}
}
