package infrastructure

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

func trackIDs(q *domain.Queue) []domain.TrackID {
	var ids []domain.TrackID
	for _, t := range q.Tracks() {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestRepository_SaveAndGet(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			queue := newTestQueue(t, testCreatorID, "t1", "t2")
			queue.Join(domain.NewParticipant(testMemberID, "member"))
			_ = queue.Play(testCreatorID)
			_ = queue.Seek(testCreatorID, 1500)

			saved, err := repo.Save(ctx, queue)
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if saved.Version() != 1 {
				t.Errorf("expected version 1, got %d", saved.Version())
			}

			got, err := repo.Get(ctx, queue.ID())
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !slices.Equal(trackIDs(got), []domain.TrackID{"t1", "t2"}) {
				t.Errorf("expected [t1 t2], got %v", trackIDs(got))
			}
			if got.Version() != 1 || got.IsPaused() || got.PositionMs() != 1500 {
				t.Errorf("unexpected state: version %d paused %v position %d",
					got.Version(), got.IsPaused(), got.PositionMs())
			}
			if !got.IsParticipant(testMemberID) || got.CreatorID() != testCreatorID {
				t.Error("expected membership restored")
			}
			if next, _ := got.NextOf("t1"); next == nil || next.ID != "t2" {
				t.Error("expected links rebuilt")
			}

			track := got.Tracks()[0]
			want := queue.Tracks()[0]
			if track.Duration != want.Duration || track.Artwork == nil || *track.Artwork != *want.Artwork {
				t.Errorf("expected track %+v, got %+v", want, track)
			}
			if !got.CreatedAt().Equal(queue.CreatedAt()) {
				t.Errorf("expected created at %v, got %v", queue.CreatedAt(), got.CreatedAt())
			}

			byCreator, err := repo.GetByCreator(ctx, testCreatorID)
			if err != nil || byCreator.ID() != queue.ID() {
				t.Errorf("expected lookup by creator, got %v", err)
			}
		})
	}
}

func TestRepository_NotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrQueueNotFound) {
				t.Errorf("get: expected ErrQueueNotFound, got %v", err)
			}
			if _, err := repo.GetByCreator(ctx, testCreatorID); !errors.Is(err, domain.ErrQueueNotFound) {
				t.Errorf("get by creator: expected ErrQueueNotFound, got %v", err)
			}
			if err := repo.Delete(ctx, "missing"); !errors.Is(err, domain.ErrQueueNotFound) {
				t.Errorf("delete: expected ErrQueueNotFound, got %v", err)
			}
		})
	}
}

func TestRepository_VersionConflict(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			saved, err := repo.Save(ctx, newTestQueue(t, testCreatorID))
			if err != nil {
				t.Fatalf("save: %v", err)
			}

			first, _ := repo.Get(ctx, saved.ID())
			second, _ := repo.Get(ctx, saved.ID())
			track, _ := domain.NewTrack(domain.TrackInput{ID: "a", Name: "a", URI: "a"})
			_ = first.AddTrack(testCreatorID, track)
			_ = second.Play(testCreatorID)

			if _, err := repo.Save(ctx, first); err != nil {
				t.Fatalf("first save: %v", err)
			}
			_, err = repo.Save(ctx, second)
			if !errors.Is(err, domain.ErrVersionConflict) {
				t.Fatalf("expected ErrVersionConflict, got %v", err)
			}

			stored, _ := repo.Get(ctx, saved.ID())
			if stored.Len() != 1 || !stored.IsPaused() || stored.Version() != 2 {
				t.Error("expected the first writer's state to survive")
			}
		})
	}
}

func TestRepository_OneQueuePerCreator(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := repo.Save(ctx, newTestQueue(t, testCreatorID)); err != nil {
				t.Fatalf("save: %v", err)
			}

			_, err := repo.Save(ctx, newTestQueue(t, testCreatorID))
			if !errors.Is(err, domain.ErrQueueExists) {
				t.Errorf("expected ErrQueueExists, got %v", err)
			}
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			saved, _ := repo.Save(ctx, newTestQueue(t, testCreatorID, "t1"))

			if err := repo.Delete(ctx, saved.ID()); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repo.Get(ctx, saved.ID()); !errors.Is(err, domain.ErrQueueNotFound) {
				t.Errorf("expected deleted queue to be gone, got %v", err)
			}
			if _, err := repo.Save(ctx, saved); !errors.Is(err, domain.ErrVersionConflict) {
				t.Errorf("expected saving a deleted queue to conflict, got %v", err)
			}
			if _, err := repo.Save(ctx, newTestQueue(t, testCreatorID)); err != nil {
				t.Errorf("expected creator to be free again, got %v", err)
			}
		})
	}
}

func TestRepository_ReturnsCopies(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			queue := newTestQueue(t, testCreatorID, "t1")
			saved, _ := repo.Save(ctx, queue)

			// Mutating without saving must not leak into the store.
			_ = saved.RemoveTrack(testCreatorID, "t1")
			_ = queue.Play(testCreatorID)

			stored, _ := repo.Get(ctx, saved.ID())
			if stored.Len() != 1 || !stored.IsPaused() {
				t.Error("expected stored queue unchanged by unsaved mutations")
			}
		})
	}
}

func TestMemoryRepository_Count(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, _ = repo.Save(ctx, newTestQueue(t, testCreatorID))
	saved, _ := repo.Save(ctx, newTestQueue(t, testMemberID))
	if repo.Count() != 2 {
		t.Errorf("expected 2 queues, got %d", repo.Count())
	}

	_ = repo.Delete(ctx, saved.ID())
	if repo.Count() != 1 {
		t.Errorf("expected 1 queue, got %d", repo.Count())
	}
}
