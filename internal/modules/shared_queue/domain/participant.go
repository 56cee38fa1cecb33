package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Participant is a user permitted to mutate a queue.
// Name is a snapshot taken at join time and is not refreshed.
type Participant struct {
	UserID   snowflake.ID
	Name     string
	JoinedAt time.Time
}

// NewParticipant creates a Participant with the current time as JoinedAt.
func NewParticipant(userID snowflake.ID, name string) Participant {
	return Participant{
		UserID:   userID,
		Name:     name,
		JoinedAt: time.Now().UTC(),
	}
}
