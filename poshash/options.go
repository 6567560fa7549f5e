package poshash

// Option configures New.
type Option func(*options)

type options struct {
	workers        int
	memoryFraction float64
}

func defaultOptions() *options {
	return &options{
		workers:        1,
		memoryFraction: DefaultMemoryFraction,
	}
}

// DefaultMemoryFraction is the share of physical memory the tables of a
// single context may occupy unless WithMemoryFraction says otherwise.
const DefaultMemoryFraction = 0.5

// WithWorkers sets how many goroutines test configurations for validity
// during New. With more than one worker the predicate is called
// concurrently and must be safe for that.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithMemoryFraction bounds the tables of the context to this fraction of
// total system memory. Zero or a negative value disables the check.
func WithMemoryFraction(f float64) Option {
	return func(o *options) {
		o.memoryFraction = f
	}
}
