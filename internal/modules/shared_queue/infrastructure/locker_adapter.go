package infrastructure

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/queueshare/internal/locker"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/ports"
)

const unlockTimeout = 5 * time.Second

// LockerAdapter exposes a locker.Locker as ports.Locker.
type LockerAdapter struct {
	locker locker.Locker
	ttl    time.Duration
}

// NewLockerAdapter creates a LockerAdapter whose locks expire after ttl.
func NewLockerAdapter(l locker.Locker, ttl time.Duration) *LockerAdapter {
	return &LockerAdapter{locker: l, ttl: ttl}
}

// Acquire blocks until key is locked or ctx is done.
func (a *LockerAdapter) Acquire(ctx context.Context, key string) (func(), error) {
	mutex := a.locker.NewMutex(key, locker.WithTTL(a.ttl))
	if err := mutex.Lock(ctx); err != nil {
		return nil, err
	}

	return func() {
		// The caller's context may already be done; release regardless.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
		defer cancel()
		if err := mutex.Unlock(ctx); err != nil {
			slog.Warn("failed to release lock", "key", mutex.Key(), "error", err)
		}
	}, nil
}

// Ensure LockerAdapter implements ports.Locker.
var _ ports.Locker = (*LockerAdapter)(nil)
