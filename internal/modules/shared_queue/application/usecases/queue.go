package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/ports"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

const (
	DefaultSaveRetries             = 3
	DefaultFriendLookupConcurrency = 8
)

// QueueOutput contains the queue after an operation.
type QueueOutput struct {
	Queue *domain.Queue
}

// CreateInput contains the input for the Create use case.
type CreateInput struct {
	CreatorID snowflake.ID
}

// CreateOutput contains the result of the Create use case.
type CreateOutput struct {
	Queue   *domain.Queue
	Created bool // false if the creator already owned a queue
}

// GetInput contains the input for the Get use case.
type GetInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
}

// AddTrackInput contains the input for the AddTrack use case.
type AddTrackInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
	Track    domain.TrackInput
}

// AddTrackOutput contains the result of the AddTrack use case.
type AddTrackOutput struct {
	Queue  *domain.Queue
	Tracks []domain.Track // ordered, head first
}

// RemoveTrackInput contains the input for the RemoveTrack use case.
type RemoveTrackInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
	TrackID  domain.TrackID
}

// MoveTrackInput contains the input for the MoveTrack use case.
type MoveTrackInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
	TrackID  domain.TrackID
	NewIndex int // 0-indexed position in the resulting order
}

// PlaybackInput contains the input for Advance, Pause and Play.
type PlaybackInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
}

// AdvanceOutput contains the result of the Advance use case.
type AdvanceOutput struct {
	Queue         *domain.Queue
	FinishedTrack *domain.Track // nil if the queue was already empty
}

// SeekInput contains the input for the Seek use case.
type SeekInput struct {
	QueueID    domain.QueueID
	CallerID   snowflake.ID
	PositionMs int64
}

// UpNextInput contains the input for the UpNext use case.
type UpNextInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
	TrackID  domain.TrackID
}

// UpNextOutput contains the result of the UpNext use case.
type UpNextOutput struct {
	Next *domain.Track // nil if TrackID is last
}

// DeleteInput contains the input for the Delete use case.
type DeleteInput struct {
	QueueID  domain.QueueID
	CallerID snowflake.ID
}

// DeleteOutput contains the result of the Delete use case.
type DeleteOutput struct {
	Deleted bool
}

// QueueServiceOptions tunes QueueService.
type QueueServiceOptions struct {
	// SaveRetries is how many times a load-apply-save cycle is retried after
	// a version conflict.
	SaveRetries int

	// FriendLookupConcurrency bounds the parallel queue lookups in FriendQueues.
	FriendLookupConcurrency int
}

// QueueService handles queue operations.
type QueueService struct {
	repo       domain.QueueRepository
	users      ports.UserDirectory
	locker     ports.Locker
	retries    int
	fanoutSize int
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	repo domain.QueueRepository,
	users ports.UserDirectory,
	locker ports.Locker,
	opts QueueServiceOptions,
) *QueueService {
	if opts.SaveRetries <= 0 {
		opts.SaveRetries = DefaultSaveRetries
	}
	if opts.FriendLookupConcurrency <= 0 {
		opts.FriendLookupConcurrency = DefaultFriendLookupConcurrency
	}
	return &QueueService{
		repo:       repo,
		users:      users,
		locker:     locker,
		retries:    opts.SaveRetries,
		fanoutSize: opts.FriendLookupConcurrency,
	}
}

// Create returns the creator's queue, creating an empty paused one if needed.
func (s *QueueService) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	release, err := s.lock(ctx, creatorLockKey(input.CreatorID))
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.repo.GetByCreator(ctx, input.CreatorID)
	switch {
	case err == nil:
		return &CreateOutput{Queue: existing}, nil
	case !errors.Is(err, domain.ErrQueueNotFound):
		return nil, err
	}

	name, err := s.users.ResolveUserName(ctx, input.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUserLookupFailed, input.CreatorID, err)
	}

	queue := domain.NewQueue(domain.NewQueueID(), domain.NewParticipant(input.CreatorID, name))
	saved, err := s.repo.Save(ctx, queue)
	if errors.Is(err, domain.ErrQueueExists) {
		// Another instance created it between our lookup and save.
		existing, err := s.repo.GetByCreator(ctx, input.CreatorID)
		if err != nil {
			return nil, err
		}
		return &CreateOutput{Queue: existing}, nil
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("queue created", "queue", saved.ID(), "creator", input.CreatorID)
	return &CreateOutput{Queue: saved, Created: true}, nil
}

// Get returns the queue if the caller participates in it.
func (s *QueueService) Get(ctx context.Context, input GetInput) (*QueueOutput, error) {
	queue, err := s.repo.Get(ctx, input.QueueID)
	if err != nil {
		return nil, err
	}
	if err := queue.Authorize(input.CallerID); err != nil {
		return nil, err
	}
	return &QueueOutput{Queue: queue}, nil
}

// AddTrack appends a track and returns the updated order.
func (s *QueueService) AddTrack(ctx context.Context, input AddTrackInput) (*AddTrackOutput, error) {
	track, err := domain.NewTrack(input.Track)
	if err != nil {
		return nil, err
	}

	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		return true, q.AddTrack(input.CallerID, track)
	})
	if err != nil {
		return nil, err
	}
	return &AddTrackOutput{Queue: queue, Tracks: queue.Tracks()}, nil
}

// RemoveTrack removes a track. Removing the current track while playing is a conflict.
func (s *QueueService) RemoveTrack(ctx context.Context, input RemoveTrackInput) (*QueueOutput, error) {
	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		return true, q.RemoveTrack(input.CallerID, input.TrackID)
	})
	if err != nil {
		return nil, err
	}
	return &QueueOutput{Queue: queue}, nil
}

// MoveTrack relocates a track within the queue.
func (s *QueueService) MoveTrack(ctx context.Context, input MoveTrackInput) (*QueueOutput, error) {
	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		return true, q.MoveTrack(input.CallerID, input.TrackID, input.NewIndex)
	})
	if err != nil {
		return nil, err
	}
	return &QueueOutput{Queue: queue}, nil
}

// Advance drops the current track. It is driven by the player's track-finished signal.
func (s *QueueService) Advance(ctx context.Context, input PlaybackInput) (*AdvanceOutput, error) {
	var finished *domain.Track
	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		var err error
		finished, err = q.Advance(input.CallerID)
		return finished != nil, err
	})
	if err != nil {
		return nil, err
	}
	return &AdvanceOutput{Queue: queue, FinishedTrack: finished}, nil
}

// Pause pauses playback. Pausing a paused queue is a no-op.
func (s *QueueService) Pause(ctx context.Context, input PlaybackInput) (*QueueOutput, error) {
	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		wasPlaying := !q.IsPaused()
		return wasPlaying, q.Pause(input.CallerID)
	})
	if err != nil {
		return nil, err
	}
	return &QueueOutput{Queue: queue}, nil
}

// Play resumes playback. Playing a playing queue is a no-op.
func (s *QueueService) Play(ctx context.Context, input PlaybackInput) (*QueueOutput, error) {
	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		wasPaused := q.IsPaused()
		return wasPaused, q.Play(input.CallerID)
	})
	if err != nil {
		return nil, err
	}
	return &QueueOutput{Queue: queue}, nil
}

// Seek sets the playback position within the current track.
func (s *QueueService) Seek(ctx context.Context, input SeekInput) (*QueueOutput, error) {
	queue, err := s.mutate(ctx, input.QueueID, func(q *domain.Queue) (bool, error) {
		return true, q.Seek(input.CallerID, input.PositionMs)
	})
	if err != nil {
		return nil, err
	}
	return &QueueOutput{Queue: queue}, nil
}

// UpNext returns the track that plays after the given one.
func (s *QueueService) UpNext(ctx context.Context, input UpNextInput) (*UpNextOutput, error) {
	queue, err := s.repo.Get(ctx, input.QueueID)
	if err != nil {
		return nil, err
	}
	if err := queue.Authorize(input.CallerID); err != nil {
		return nil, err
	}
	next, err := queue.NextOf(input.TrackID)
	if err != nil {
		return nil, err
	}
	return &UpNextOutput{Next: next}, nil
}

// Delete removes the queue. Only the creator can delete it.
func (s *QueueService) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	release, err := s.lock(ctx, queueLockKey(input.QueueID))
	if err != nil {
		return nil, err
	}
	defer release()

	queue, err := s.repo.Get(ctx, input.QueueID)
	if err != nil {
		return nil, err
	}
	if err := queue.AuthorizeCreator(input.CallerID); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, input.QueueID); err != nil {
		return nil, err
	}

	slog.Debug("queue deleted", "queue", input.QueueID, "creator", input.CallerID)
	return &DeleteOutput{Deleted: true}, nil
}

// mutate runs one load-apply-save cycle under the queue lock and retries it
// when the repository reports a version conflict. apply reports whether it
// changed the queue; unchanged queues are not saved.
// apply may run more than once and must only touch the queue it is given.
func (s *QueueService) mutate(
	ctx context.Context,
	id domain.QueueID,
	apply func(*domain.Queue) (bool, error),
) (*domain.Queue, error) {
	release, err := s.lock(ctx, queueLockKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		queue, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		changed, err := apply(queue)
		if err != nil {
			return nil, err
		}
		if !changed {
			return queue, nil
		}

		saved, err := s.repo.Save(ctx, queue)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}

		lastErr = err
		slog.Debug("retrying queue mutation", "queue", id, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (s *QueueService) lock(ctx context.Context, key string) (func(), error) {
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLockFailed, key, err)
	}
	return release, nil
}

func queueLockKey(id domain.QueueID) string {
	return "queue:" + string(id)
}

func creatorLockKey(id snowflake.ID) string {
	return "creator:" + id.String()
}
