package locker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryLocker locks within a single process.
type MemoryLocker struct {
	mu     sync.Mutex
	locks  map[string]*memoryLock
	prefix string
	closed bool
}

type memoryLock struct {
	mu        sync.Mutex
	owner     uint64 // 0 when free
	expiresAt time.Time
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker(prefix string) *MemoryLocker {
	return &MemoryLocker{
		locks:  make(map[string]*memoryLock),
		prefix: prefix,
	}
}

// NewMutex returns a mutex sharing state with every other mutex for key.
func (l *MemoryLocker) NewMutex(key string, opts ...Option) Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	fullKey := prefixed(l.prefix, key)
	if l.closed {
		return &degradedMutex{key: fullKey, err: ErrLockerClosed}
	}

	lock, ok := l.locks[fullKey]
	if !ok {
		lock = &memoryLock{}
		l.locks[fullKey] = lock
	}
	return &MemoryMutex{key: fullKey, lock: lock, options: applyOptions(opts...)}
}

// Close marks the locker closed.
func (l *MemoryLocker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	return nil
}

// MemoryMutex is a Mutex of a MemoryLocker.
type MemoryMutex struct {
	key     string
	lock    *memoryLock
	options Options
	owner   uint64
}

// Lock acquires the lock, polling every RetryDelay.
func (m *MemoryMutex) Lock(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.tryAcquire() {
			return nil
		}
		if m.options.RetryCount >= 0 && attempt >= m.options.RetryCount {
			return ErrLockAcquireFailed
		}

		timer := time.NewTimer(m.options.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryLock acquires the lock if it is free.
func (m *MemoryMutex) TryLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.tryAcquire() {
		return nil
	}
	return ErrLockAcquireFailed
}

// Unlock releases the lock if this mutex still holds it.
func (m *MemoryMutex) Unlock(_ context.Context) error {
	m.lock.mu.Lock()
	defer m.lock.mu.Unlock()

	if !m.holds() {
		return ErrLockNotHeld
	}
	m.lock.owner = 0
	m.lock.expiresAt = time.Time{}
	return nil
}

// Extend resets the TTL.
func (m *MemoryMutex) Extend(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.lock.mu.Lock()
	defer m.lock.mu.Unlock()

	if !m.holds() {
		return ErrLockNotHeld
	}
	m.lock.expiresAt = time.Now().Add(m.options.TTL)
	return nil
}

// Key returns the prefixed key.
func (m *MemoryMutex) Key() string {
	return m.key
}

func (m *MemoryMutex) tryAcquire() bool {
	m.lock.mu.Lock()
	defer m.lock.mu.Unlock()

	now := time.Now()
	if m.lock.owner != 0 && now.Before(m.lock.expiresAt) {
		return false
	}

	m.owner = ownerSeq.Add(1)
	m.lock.owner = m.owner
	m.lock.expiresAt = now.Add(m.options.TTL)
	return true
}

// holds must be called with m.lock.mu held.
func (m *MemoryMutex) holds() bool {
	return m.owner != 0 && m.lock.owner == m.owner && time.Now().Before(m.lock.expiresAt)
}

var ownerSeq atomic.Uint64

var (
	_ Locker = (*MemoryLocker)(nil)
	_ Mutex  = (*MemoryMutex)(nil)
)
