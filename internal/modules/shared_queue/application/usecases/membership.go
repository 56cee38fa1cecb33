package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	Queue  *domain.Queue
	Joined bool // false if the caller already participated
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
}

// LeaveOutput contains the result of the Leave use case.
type LeaveOutput struct {
	Left bool // false if the caller was not a participant
}

// RemoveParticipantInput contains the input for the RemoveParticipant use case.
type RemoveParticipantInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
	TargetID snowflake.ID
}

// Join adds the caller to the queue's participants.
// The display name is snapshotted from the user directory.
func (s *QueueService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	queue, err := s.repo.Get(ctx, input.QueueID)
	if err != nil {
		return nil, err
	}
	if queue.IsParticipant(input.CallerID) {
		return &JoinOutput{Queue: queue}, nil
	}

	// Resolved outside the lock so a slow directory does not block other writers.
	name, err := s.users.ResolveUserName(ctx, input.CallerID)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUserLookupFailed, input.CallerID, err)
	}
	participant := domain.NewParticipant(input.CallerID, name)

	var joined bool
	queue, err = s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		joined = q.Join(participant)
		return joined, nil
	})
	if err != nil {
		return nil, err
	}

	if joined {
		slog.Debug("participant joined", "queue", input.QueueID, "user", input.CallerID)
	}
	return &JoinOutput{Queue: queue, Joined: joined}, nil
}

// Leave removes the caller from the queue. The creator cannot leave.
func (s *QueueService) Leave(ctx context.Context, input LeaveInput) (*LeaveOutput, error) {
	var left bool
	_, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		var err error
		left, err = q.Leave(input.CallerID)
		return left, err
	})
	if err != nil {
		return nil, err
	}
	return &LeaveOutput{Left: left}, nil
}

// RemoveParticipant lets the creator remove another participant.
func (s *QueueService) RemoveParticipant(
	ctx context.Context,
	input RemoveParticipantInput,
) (*QueueOutput, error) {
	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		return true, q.RemoveParticipant(input.CallerID, input.TargetID)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("participant removed", "queue", input.QueueID, "user", input.TargetID)
	return &QueueOutput{Queue: queue}, nil
}
