package locker

import "time"

const (
	DefaultTTL        = 10 * time.Second
	DefaultRetryDelay = 50 * time.Millisecond

	// DefaultRetryCount of -1 retries until the context is done.
	DefaultRetryCount = -1
)

// Options configures a mutex.
type Options struct {
	// TTL bounds how long a crashed holder can block others.
	TTL time.Duration

	// RetryDelay is the wait between acquisition attempts.
	RetryDelay time.Duration

	// RetryCount is the number of retries after the first attempt.
	// -1 retries until the context is done; 0 behaves like TryLock.
	RetryCount int
}

// Option configures a mutex.
type Option func(*Options)

func applyOptions(opts ...Option) Options {
	o := Options{
		TTL:        DefaultTTL,
		RetryDelay: DefaultRetryDelay,
		RetryCount: DefaultRetryCount,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTTL sets the lock expiry. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.TTL = ttl
		}
	}
}

// WithRetryDelay sets the delay between attempts. Non-positive values are ignored.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *Options) {
		if delay > 0 {
			o.RetryDelay = delay
		}
	}
}

// WithRetryCount sets the retry limit. Use -1 to retry until the context is done.
func WithRetryCount(count int) Option {
	return func(o *Options) {
		o.RetryCount = count
	}
}
