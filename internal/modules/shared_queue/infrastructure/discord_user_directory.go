package infrastructure

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/ports"
)

// Ensure DiscordUserDirectory implements ports.UserDirectory.
var (
	_ ports.UserDirectory = (*DiscordUserDirectory)(nil)
)

// DiscordUsers is the part of *discordgo.Session used to look up users.
type DiscordUsers interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// DiscordUserDirectory resolves names through the Discord API and friend
// lists through a FriendSource.
type DiscordUserDirectory struct {
	users   DiscordUsers
	friends FriendSource
}

// NewDiscordUserDirectory creates a new DiscordUserDirectory.
func NewDiscordUserDirectory(users DiscordUsers, friends FriendSource) *DiscordUserDirectory {
	return &DiscordUserDirectory{users: users, friends: friends}
}

// ResolveUserName returns the user's global display name, or the username if unset.
func (d *DiscordUserDirectory) ResolveUserName(
	ctx context.Context,
	userID snowflake.ID,
) (string, error) {
	user, err := d.users.User(userID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch user: %w", err)
	}
	return getDisplayName(user), nil
}

// ResolveFriends returns the user's friends from the friend source.
func (d *DiscordUserDirectory) ResolveFriends(
	ctx context.Context,
	userID snowflake.ID,
) ([]ports.Friend, error) {
	return d.friends.Friends(ctx, userID)
}

// getDisplayName returns the effective display name for a user.
// Priority: global display name > username.
func getDisplayName(user *discordgo.User) string {
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
