package infrastructure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

const (
	testCreatorID = snowflake.ID(10)
	testMemberID  = snowflake.ID(20)
)

func newTestQueue(t *testing.T, creator snowflake.ID, tracks ...string) *domain.Queue {
	t.Helper()
	queue := domain.NewQueue(domain.NewQueueID(), domain.NewParticipant(creator, "creator"))
	for _, id := range tracks {
		track, err := domain.NewTrack(domain.TrackInput{
			ID:       id,
			Name:     "Track " + id,
			URI:      "spotify:track:" + id,
			Duration: 3*time.Minute + 500*time.Millisecond,
			Artists:  []string{"Artist"},
			Artwork:  &domain.Artwork{URL: "https://img/" + id, Height: 64, Width: 64},
		})
		if err != nil {
			t.Fatalf("new track: %v", err)
		}
		if err := queue.AddTrack(creator, track); err != nil {
			t.Fatalf("add track: %v", err)
		}
	}
	return queue
}

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "queues.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteRepository(db)
}

func repositories(t *testing.T) map[string]domain.QueueRepository {
	return map[string]domain.QueueRepository{
		"memory": NewMemoryRepository(),
		"sqlite": newTestSQLite(t),
	}
}
