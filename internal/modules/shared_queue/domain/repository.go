package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// QueueRepository defines the interface for storing and retrieving queues.
// Queues are always loaded and saved as whole aggregates.
type QueueRepository interface {
	// Get returns the queue with the given ID, or ErrQueueNotFound.
	Get(ctx context.Context, id QueueID) (*Queue, error)

	// GetByCreator returns the queue owned by the given user, or ErrQueueNotFound.
	GetByCreator(ctx context.Context, creatorID snowflake.ID) (*Queue, error)

	// Save stores the queue if the stored version still equals queue.Version(),
	// and returns the stored queue with its new version.
	// A mismatch returns ErrVersionConflict. Saving a new queue (version 0) for a
	// creator who already owns one returns ErrQueueExists.
	Save(ctx context.Context, queue *Queue) (*Queue, error)

	// Delete removes the queue. Returns ErrQueueNotFound if absent.
	Delete(ctx context.Context, id QueueID) error
}

// WithVersion returns a copy of the queue stamped with the given version.
// Intended for repository implementations.
func (q *Queue) WithVersion(version int64) *Queue {
	s := q.Snapshot()
	s.Version = version
	return &Queue{
		id:           s.ID,
		creatorID:    s.CreatorID,
		chain:        NewNodeChain(s.Tracks...),
		paused:       s.Paused,
		positionMs:   s.PositionMs,
		participants: s.Participants,
		version:      s.Version,
		createdAt:    s.CreatedAt,
		updatedAt:    s.UpdatedAt,
	}
}
