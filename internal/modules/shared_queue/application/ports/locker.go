package ports

import "context"

// Locker hands out named mutexes shared by every instance of the service.
type Locker interface {
	// Acquire blocks until the named lock is held or ctx is done.
	// The returned release func must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
