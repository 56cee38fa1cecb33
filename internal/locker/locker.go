// Package locker provides named mutexes backed by process memory or Redis.
package locker

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrLockNotHeld is returned when unlocking or extending a lock this mutex does not hold.
	ErrLockNotHeld = errors.New("lock not held")

	// ErrLockAcquireFailed is returned when acquisition fails after the configured retries.
	ErrLockAcquireFailed = errors.New("failed to acquire lock")

	// ErrLockerClosed is returned by mutexes created after Close.
	ErrLockerClosed = errors.New("locker is closed")
)

// Type selects the locker backend.
type Type string

const (
	// TypeMemory locks within one process.
	TypeMemory Type = "memory"

	// TypeRedis locks across processes sharing a Redis server.
	TypeRedis Type = "redis"

	// TypeNoop never blocks. Only safe with a single writer.
	TypeNoop Type = "noop"
)

// Locker creates mutexes by key.
type Locker interface {
	// NewMutex returns a mutex for key. Mutexes with the same key exclude each other.
	NewMutex(key string, opts ...Option) Mutex

	// Close releases resources held by the locker. Mutexes created afterwards fail.
	Close() error
}

// Mutex is one named lock. A Mutex value must not be shared between holders.
type Mutex interface {
	// Lock blocks until the lock is acquired, the retries run out or ctx is done.
	Lock(ctx context.Context) error

	// TryLock acquires the lock or returns ErrLockAcquireFailed immediately.
	TryLock(ctx context.Context) error

	// Unlock releases the lock. Returns ErrLockNotHeld if it expired or was never taken.
	Unlock(ctx context.Context) error

	// Extend resets the lock's TTL.
	Extend(ctx context.Context) error

	// Key returns the full key including any prefix.
	Key() string
}

// Config selects and configures a backend.
type Config struct {
	Type Type

	// Redis is required for TypeRedis.
	Redis RedisConfig

	// Prefix namespaces every key, e.g. "queueshare".
	Prefix string
}

// New creates the Locker described by cfg.
// For TypeRedis it dials the server and fails if it is unreachable.
func New(ctx context.Context, cfg Config) (Locker, error) {
	switch cfg.Type {
	case TypeMemory, "":
		return NewMemoryLocker(cfg.Prefix), nil
	case TypeNoop:
		return NewNoopLocker(cfg.Prefix), nil
	case TypeRedis:
		client, err := DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return newOwnedRedisLocker(client, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown locker type: %q", cfg.Type)
	}
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// degradedMutex is handed out by closed lockers.
type degradedMutex struct {
	key string
	err error
}

func (m *degradedMutex) Lock(context.Context) error    { return m.err }
func (m *degradedMutex) TryLock(context.Context) error { return m.err }
func (m *degradedMutex) Unlock(context.Context) error  { return m.err }
func (m *degradedMutex) Extend(context.Context) error  { return m.err }
func (m *degradedMutex) Key() string                   { return m.key }

var _ Mutex = (*degradedMutex)(nil)
