package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
	"golang.org/x/sync/errgroup"
)

// FriendQueuesInput contains the input for the FriendQueues use case.
type FriendQueuesInput struct {
	CallerID snowflake.ID
}

// FriendQueue is a queue owned by one of the caller's friends.
type FriendQueue struct {
	QueueID     domain.QueueID
	CreatorID   snowflake.ID
	CreatorName string
}

// FriendQueuesOutput contains the result of the FriendQueues use case.
type FriendQueuesOutput struct {
	Queues []FriendQueue // in friend-list order
}

// FriendQueues lists the queues created by the caller's friends.
// Friends without a queue are omitted. Lookup failures never fail the call.
func (s *QueueService) FriendQueues(
	ctx context.Context,
	input FriendQueuesInput,
) (*FriendQueuesOutput, error) {
	friends, err := s.users.ResolveFriends(ctx, input.CallerID)
	if err != nil {
		slog.Warn("failed to resolve friends", "user", input.CallerID, "error", err)
		return &FriendQueuesOutput{Queues: []FriendQueue{}}, nil
	}

	// One slot per friend keeps the result in friend-list order.
	hits := make([]*FriendQueue, len(friends))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanoutSize)
	for i, friend := range friends {
		g.Go(func() error {
			queue, err := s.repo.GetByCreator(gctx, friend.UserID)
			if err != nil {
				if !errors.Is(err, domain.ErrQueueNotFound) {
					slog.Warn("failed to look up friend queue",
						"user", input.CallerID, "friend", friend.UserID, "error", err)
				}
				return nil
			}
			hits[i] = &FriendQueue{
				QueueID:     queue.ID(),
				CreatorID:   friend.UserID,
				CreatorName: friend.Name,
			}
			return nil
		})
	}
	// Workers never return errors.
	_ = g.Wait()

	queues := make([]FriendQueue, 0, len(friends))
	for _, hit := range hits {
		if hit != nil {
			queues = append(queues, *hit)
		}
	}
	return &FriendQueuesOutput{Queues: queues}, nil
}
