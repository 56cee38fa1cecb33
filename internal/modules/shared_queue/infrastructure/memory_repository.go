package infrastructure

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

// MemoryRepository is an in-memory implementation of QueueRepository.
// It stores snapshots, so callers never share state with the store.
type MemoryRepository struct {
	mu        sync.RWMutex
	queues    map[domain.QueueID]domain.QueueSnapshot
	byCreator map[snowflake.ID]domain.QueueID
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		queues:    make(map[domain.QueueID]domain.QueueSnapshot),
		byCreator: make(map[snowflake.ID]domain.QueueID),
	}
}

// Get returns the queue with the given ID.
func (r *MemoryRepository) Get(_ context.Context, id domain.QueueID) (*domain.Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.queues[id]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	return domain.RestoreQueue(snapshot)
}

// GetByCreator returns the queue owned by the given user.
func (r *MemoryRepository) GetByCreator(
	ctx context.Context,
	creatorID snowflake.ID,
) (*domain.Queue, error) {
	r.mu.RLock()
	id, ok := r.byCreator[creatorID]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	return r.Get(ctx, id)
}

// Save stores the queue if its version matches the stored one.
func (r *MemoryRepository) Save(_ context.Context, queue *domain.Queue) (*domain.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.queues[queue.ID()]
	switch {
	case exists && stored.Version != queue.Version():
		return nil, domain.ErrVersionConflict
	case !exists && queue.Version() != 0:
		// Deleted since it was loaded.
		return nil, domain.ErrVersionConflict
	case !exists:
		if _, taken := r.byCreator[queue.CreatorID()]; taken {
			return nil, domain.ErrQueueExists
		}
	}

	saved := queue.WithVersion(queue.Version() + 1)
	r.queues[saved.ID()] = saved.Snapshot()
	r.byCreator[saved.CreatorID()] = saved.ID()
	return saved, nil
}

// Delete removes the queue.
func (r *MemoryRepository) Delete(_ context.Context, id domain.QueueID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, ok := r.queues[id]
	if !ok {
		return domain.ErrQueueNotFound
	}
	delete(r.queues, id)
	delete(r.byCreator, snapshot.CreatorID)
	return nil
}

// Count returns the number of stored queues (for testing/monitoring).
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.queues)
}

// Ensure MemoryRepository implements QueueRepository.
var _ domain.QueueRepository = (*MemoryRepository)(nil)
