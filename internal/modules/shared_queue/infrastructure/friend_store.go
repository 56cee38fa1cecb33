package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/ports"
)

// FriendSource reads a user's friend list. The friend graph is owned by
// another system; these stores only read it.
type FriendSource interface {
	Friends(ctx context.Context, userID snowflake.ID) ([]ports.Friend, error)
}

// SQLiteFriendStore reads friend lists from the friends table.
type SQLiteFriendStore struct {
	db *sql.DB
}

// NewSQLiteFriendStore creates a friend store on an open database. See OpenSQLite.
func NewSQLiteFriendStore(db *sql.DB) *SQLiteFriendStore {
	return &SQLiteFriendStore{db: db}
}

// Friends returns the user's friends ordered by position.
func (s *SQLiteFriendStore) Friends(ctx context.Context, userID snowflake.ID) ([]ports.Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT friend_id, name FROM friends WHERE user_id = ? ORDER BY position`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query friends of %s: %w", userID, err)
	}
	defer rows.Close()

	var friends []ports.Friend
	for rows.Next() {
		var friendID, name string
		if err := rows.Scan(&friendID, &name); err != nil {
			return nil, fmt.Errorf("scan friend of %s: %w", userID, err)
		}
		id, err := snowflake.Parse(friendID)
		if err != nil {
			return nil, fmt.Errorf("friend of %s has bad id %q: %w", userID, friendID, err)
		}
		friends = append(friends, ports.Friend{UserID: id, Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read friends of %s: %w", userID, err)
	}
	return friends, nil
}

// MemoryFriendStore holds friend lists in memory.
type MemoryFriendStore struct {
	mu      sync.RWMutex
	friends map[snowflake.ID][]ports.Friend
}

// NewMemoryFriendStore creates an empty MemoryFriendStore.
func NewMemoryFriendStore() *MemoryFriendStore {
	return &MemoryFriendStore{friends: make(map[snowflake.ID][]ports.Friend)}
}

// SetFriends replaces the user's friend list.
func (s *MemoryFriendStore) SetFriends(userID snowflake.ID, friends []ports.Friend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.friends[userID] = slices.Clone(friends)
}

// Friends returns the user's friends in insertion order.
func (s *MemoryFriendStore) Friends(_ context.Context, userID snowflake.ID) ([]ports.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.friends[userID]), nil
}

var (
	_ FriendSource = (*SQLiteFriendStore)(nil)
	_ FriendSource = (*MemoryFriendStore)(nil)
)
