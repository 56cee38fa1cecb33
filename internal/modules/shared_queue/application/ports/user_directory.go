package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// Friend is one entry of a user's friend list.
type Friend struct {
	UserID snowflake.ID
	Name   string
}

// UserDirectory resolves user identities. The engine only reads from it.
type UserDirectory interface {
	// ResolveUserName returns the display name for the given user.
	ResolveUserName(ctx context.Context, userID snowflake.ID) (string, error)

	// ResolveFriends returns the user's friends in their stored order.
	ResolveFriends(ctx context.Context, userID snowflake.ID) ([]Friend, error)
}
