package locker

import "context"

// NoopLocker hands out mutexes that never block.
type NoopLocker struct {
	prefix string
}

// NewNoopLocker creates a NoopLocker.
func NewNoopLocker(prefix string) *NoopLocker {
	return &NoopLocker{prefix: prefix}
}

// NewMutex returns a mutex that always succeeds.
func (l *NoopLocker) NewMutex(key string, _ ...Option) Mutex {
	return &NoopMutex{key: prefixed(l.prefix, key)}
}

// Close is a no-op.
func (l *NoopLocker) Close() error {
	return nil
}

// NoopMutex succeeds unless the context is done.
type NoopMutex struct {
	key string
}

func (m *NoopMutex) Lock(ctx context.Context) error    { return ctx.Err() }
func (m *NoopMutex) TryLock(ctx context.Context) error { return ctx.Err() }
func (m *NoopMutex) Unlock(context.Context) error      { return nil }
func (m *NoopMutex) Extend(ctx context.Context) error  { return ctx.Err() }
func (m *NoopMutex) Key() string                       { return m.key }

var (
	_ Locker = (*NoopLocker)(nil)
	_ Mutex  = (*NoopMutex)(nil)
)
