package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for TypeRedis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DialRedis opens a client and verifies the server answers.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}

	slog.Info("connected to Redis", "address", cfg.Addr, "db", cfg.DB)
	return client, nil
}

// RedisLocker locks across processes with redsync.
type RedisLocker struct {
	mu         sync.RWMutex
	client     *redis.Client
	redsync    *redsync.Redsync
	prefix     string
	closed     bool
	ownsClient bool // set when New dialed the client
}

// NewRedisLocker wraps an existing client. Close leaves the client open.
func NewRedisLocker(client *redis.Client, prefix string) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	return &RedisLocker{
		client:  client,
		redsync: redsync.New(goredis.NewPool(client)),
		prefix:  prefix,
	}, nil
}

func newOwnedRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	l, _ := NewRedisLocker(client, prefix)
	l.ownsClient = true
	return l
}

// NewMutex returns a redsync-backed mutex for key.
func (l *RedisLocker) NewMutex(key string, opts ...Option) Mutex {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fullKey := prefixed(l.prefix, key)
	if l.closed {
		return &degradedMutex{key: fullKey, err: ErrLockerClosed}
	}

	options := applyOptions(opts...)
	tries := options.RetryCount + 1
	if options.RetryCount < 0 {
		// Unbounded; the context ends the wait.
		tries = 1 << 30
	}

	return &RedisMutex{
		key: fullKey,
		mutex: l.redsync.NewMutex(fullKey,
			redsync.WithExpiry(options.TTL),
			redsync.WithRetryDelay(options.RetryDelay),
			redsync.WithTries(tries),
		),
	}
}

// Close marks the locker closed and closes the client if New dialed it.
func (l *RedisLocker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.ownsClient {
		return l.client.Close()
	}
	return nil
}

// RedisMutex is a Mutex of a RedisLocker.
type RedisMutex struct {
	key   string
	mutex *redsync.Mutex
}

// Lock acquires the lock, retrying per the mutex options.
func (m *RedisMutex) Lock(ctx context.Context) error {
	if err := m.mutex.LockContext(ctx); err != nil {
		return m.acquireError(ctx, err)
	}
	return nil
}

// TryLock makes a single acquisition attempt.
func (m *RedisMutex) TryLock(ctx context.Context) error {
	if err := m.mutex.TryLockContext(ctx); err != nil {
		return m.acquireError(ctx, err)
	}
	return nil
}

// Unlock releases the lock.
func (m *RedisMutex) Unlock(ctx context.Context) error {
	ok, err := m.mutex.UnlockContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isTaken(err) {
			return ErrLockNotHeld
		}
		return fmt.Errorf("unlock %s: %w", m.key, err)
	}
	if !ok {
		return ErrLockNotHeld
	}
	return nil
}

// Extend resets the TTL.
func (m *RedisMutex) Extend(ctx context.Context) error {
	ok, err := m.mutex.ExtendContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isTaken(err) || errors.Is(err, redsync.ErrExtendFailed) {
			return ErrLockNotHeld
		}
		return fmt.Errorf("extend lock %s: %w", m.key, err)
	}
	if !ok {
		return ErrLockNotHeld
	}
	return nil
}

// Key returns the prefixed key.
func (m *RedisMutex) Key() string {
	return m.key
}

func (m *RedisMutex) acquireError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if isTaken(err) {
		return ErrLockAcquireFailed
	}
	slog.Debug("failed to acquire redis lock", "key", m.key, "error", err)
	return fmt.Errorf("acquire lock %s: %w", m.key, err)
}

func isTaken(err error) bool {
	var taken *redsync.ErrTaken
	return errors.Is(err, redsync.ErrFailed) ||
		errors.Is(err, redsync.ErrLockAlreadyExpired) ||
		errors.As(err, &taken) ||
		strings.Contains(err.Error(), "lock already taken")
}

var (
	_ Locker = (*RedisLocker)(nil)
	_ Mutex  = (*RedisMutex)(nil)
)
