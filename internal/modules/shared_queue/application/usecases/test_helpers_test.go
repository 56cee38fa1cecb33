package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/ports"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

const (
	creatorID  = snowflake.ID(100)
	memberID   = snowflake.ID(200)
	outsiderID = snowflake.ID(300)
)

func mockTrackInput(id string) domain.TrackInput {
	return domain.TrackInput{
		ID:       id,
		Name:     "Track " + id,
		URI:      "spotify:track:" + id,
		Duration: 3 * time.Minute,
		Artists:  []string{"Artist"},
	}
}

func trackIDs(tracks []domain.Track) []domain.TrackID {
	ids := make([]domain.TrackID, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

// mockRepository stores snapshots and enforces the version check like the
// real repositories.
type mockRepository struct {
	mu          sync.Mutex
	queues      map[domain.QueueID]domain.QueueSnapshot
	saves       int
	conflicts   int // number of upcoming saves that fail with ErrVersionConflict
	creatorErrs map[snowflake.ID]error
	getErr      error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		queues:      make(map[domain.QueueID]domain.QueueSnapshot),
		creatorErrs: make(map[snowflake.ID]error),
	}
}

func (m *mockRepository) Get(_ context.Context, id domain.QueueID) (*domain.Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	snapshot, ok := m.queues[id]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	return domain.RestoreQueue(snapshot)
}

func (m *mockRepository) GetByCreator(
	_ context.Context,
	creator snowflake.ID,
) (*domain.Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.creatorErrs[creator]; err != nil {
		return nil, err
	}
	for _, snapshot := range m.queues {
		if snapshot.CreatorID == creator {
			return domain.RestoreQueue(snapshot)
		}
	}
	return nil, domain.ErrQueueNotFound
}

func (m *mockRepository) Save(_ context.Context, queue *domain.Queue) (*domain.Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts > 0 {
		m.conflicts--
		return nil, domain.ErrVersionConflict
	}
	stored, ok := m.queues[queue.ID()]
	if ok && stored.Version != queue.Version() {
		return nil, domain.ErrVersionConflict
	}
	if !ok && queue.Version() != 0 {
		return nil, domain.ErrQueueNotFound
	}

	saved := queue.WithVersion(queue.Version() + 1)
	m.queues[queue.ID()] = saved.Snapshot()
	m.saves++
	return saved, nil
}

func (m *mockRepository) Delete(_ context.Context, id domain.QueueID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.queues[id]; !ok {
		return domain.ErrQueueNotFound
	}
	delete(m.queues, id)
	return nil
}

// createQueue stores a queue owned by creatorID with the given members and tracks.
func (m *mockRepository) createQueue(members []snowflake.ID, tracks ...string) *domain.Queue {
	queue := domain.NewQueue(domain.NewQueueID(), domain.NewParticipant(creatorID, "creator"))
	for _, member := range members {
		queue.Join(domain.NewParticipant(member, "member"))
	}
	for _, id := range tracks {
		track, err := domain.NewTrack(mockTrackInput(id))
		if err != nil {
			panic(err)
		}
		if err := queue.AddTrack(creatorID, track); err != nil {
			panic(err)
		}
	}
	saved, err := m.Save(context.Background(), queue)
	if err != nil {
		panic(err)
	}
	return saved
}

func (m *mockRepository) stored(id domain.QueueID) *domain.Queue {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue, err := domain.RestoreQueue(m.queues[id])
	if err != nil {
		panic(err)
	}
	return queue
}

type mockUserDirectory struct {
	names     map[snowflake.ID]string
	friends   map[snowflake.ID][]ports.Friend
	nameErr   error
	friendErr error
	nameCalls int
}

func newMockUserDirectory() *mockUserDirectory {
	return &mockUserDirectory{
		names: map[snowflake.ID]string{
			creatorID: "creator",
			memberID:  "member",
		},
		friends: make(map[snowflake.ID][]ports.Friend),
	}
}

func (m *mockUserDirectory) ResolveUserName(_ context.Context, userID snowflake.ID) (string, error) {
	m.nameCalls++
	if m.nameErr != nil {
		return "", m.nameErr
	}
	name, ok := m.names[userID]
	if !ok {
		return "", errors.New("unknown user")
	}
	return name, nil
}

func (m *mockUserDirectory) ResolveFriends(
	_ context.Context,
	userID snowflake.ID,
) ([]ports.Friend, error) {
	if m.friendErr != nil {
		return nil, m.friendErr
	}
	return m.friends[userID], nil
}

type mockLocker struct {
	mu       sync.Mutex
	acquired []string
	held     map[string]bool
	err      error
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]bool)}
}

func (m *mockLocker) Acquire(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	m.acquired = append(m.acquired, key)
	m.held[key] = true
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
	}, nil
}

func (m *mockLocker) heldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

type testService struct {
	*QueueService
	repo   *mockRepository
	users  *mockUserDirectory
	locker *mockLocker
}

func newTestService() *testService {
	repo := newMockRepository()
	users := newMockUserDirectory()
	locker := newMockLocker()
	return &testService{
		QueueService: NewQueueService(repo, users, locker, QueueServiceOptions{}),
		repo:         repo,
		users:        users,
		locker:       locker,
	}
}
