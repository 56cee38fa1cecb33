package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// QueueID is the unique identifier of a queue.
type QueueID string

// NewQueueID returns a fresh random QueueID.
func NewQueueID() QueueID {
	return QueueID(uuid.NewString())
}

// ParseQueueID validates s as a QueueID.
func ParseQueueID(s string) (QueueID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", &ValidationError{Subject: "queue id", Invalid: []string{s}}
	}
	return QueueID(id.String()), nil
}

// Queue is the aggregate root: the node chain, the participants, and the
// shared playback state of one creator's session.
type Queue struct {
	id           QueueID
	creatorID    snowflake.ID
	chain        NodeChain
	paused       bool
	positionMs   int64
	participants []Participant
	version      int64 // incremented by the repository on every save
	createdAt    time.Time
	updatedAt    time.Time
}

// NewQueue creates an empty, paused queue whose only participant is the creator.
func NewQueue(id QueueID, creator Participant) *Queue {
	now := time.Now().UTC()
	return &Queue{
		id:           id,
		creatorID:    creator.UserID,
		chain:        NewNodeChain(),
		paused:       true,
		participants: []Participant{creator},
		createdAt:    now,
		updatedAt:    now,
	}
}

// QueueSnapshot is the persisted form of a Queue. Adjacency is not part of
// it; RestoreQueue derives the links from the track order.
type QueueSnapshot struct {
	ID           QueueID
	CreatorID    snowflake.ID
	Tracks       []Track
	Paused       bool
	PositionMs   int64
	Participants []Participant
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot returns a deep copy of the queue state.
func (q *Queue) Snapshot() QueueSnapshot {
	return QueueSnapshot{
		ID:           q.id,
		CreatorID:    q.creatorID,
		Tracks:       q.chain.Tracks(),
		Paused:       q.paused,
		PositionMs:   q.positionMs,
		Participants: slices.Clone(q.participants),
		Version:      q.version,
		CreatedAt:    q.createdAt,
		UpdatedAt:    q.updatedAt,
	}
}

// RestoreQueue rebuilds a Queue from a snapshot and checks its invariants.
func RestoreQueue(s QueueSnapshot) (*Queue, error) {
	q := &Queue{
		id:           s.ID,
		creatorID:    s.CreatorID,
		chain:        NewNodeChain(s.Tracks...),
		paused:       s.Paused,
		positionMs:   s.PositionMs,
		participants: slices.Clone(s.Participants),
		version:      s.Version,
		createdAt:    s.CreatedAt,
		updatedAt:    s.UpdatedAt,
	}
	if err := q.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("restore queue %s: %w", s.ID, err)
	}
	return q, nil
}

// ID returns the queue ID.
func (q *Queue) ID() QueueID {
	return q.id
}

// CreatorID returns the ID of the user who owns the queue.
func (q *Queue) CreatorID() snowflake.ID {
	return q.creatorID
}

// Version returns the stored version this queue was loaded at.
func (q *Queue) Version() int64 {
	return q.version
}

// CreatedAt returns when the queue was created.
func (q *Queue) CreatedAt() time.Time {
	return q.createdAt
}

// UpdatedAt returns when the queue was last mutated.
func (q *Queue) UpdatedAt() time.Time {
	return q.updatedAt
}

// IsPaused returns true if playback is paused.
func (q *Queue) IsPaused() bool {
	return q.paused
}

// PositionMs returns the playback position within the current track.
func (q *Queue) PositionMs() int64 {
	return q.positionMs
}

// Len returns the number of tracks.
func (q *Queue) Len() int {
	return q.chain.Len()
}

// Current returns the track at the head, or nil if the queue is empty.
func (q *Queue) Current() *Track {
	return q.chain.Current()
}

// Tracks returns the ordered tracks.
func (q *Queue) Tracks() []Track {
	return q.chain.Tracks()
}

// Nodes returns the ordered nodes including their links.
func (q *Queue) Nodes() []QueueNode {
	return q.chain.Nodes()
}

// NextOf returns the track that plays after the given one, or nil at the tail.
func (q *Queue) NextOf(id TrackID) (*Track, error) {
	return q.chain.NextOf(id)
}

// Participants returns a copy of the participant list, creator first.
func (q *Queue) Participants() []Participant {
	return slices.Clone(q.participants)
}

// IsParticipant returns true if the user is a participant.
func (q *Queue) IsParticipant(userID snowflake.ID) bool {
	return q.participantIndex(userID) >= 0
}

// IsCreator returns true if the user owns the queue.
func (q *Queue) IsCreator(userID snowflake.ID) bool {
	return q.creatorID == userID
}

// Authorize returns ErrNotParticipant unless the caller is a participant.
func (q *Queue) Authorize(callerID snowflake.ID) error {
	if !q.IsParticipant(callerID) {
		return ErrNotParticipant
	}
	return nil
}

// AuthorizeCreator returns ErrNotCreator unless the caller owns the queue.
func (q *Queue) AuthorizeCreator(callerID snowflake.ID) error {
	if !q.IsCreator(callerID) {
		return ErrNotCreator
	}
	return nil
}

// AddTrack appends a track to the tail.
func (q *Queue) AddTrack(callerID snowflake.ID, track Track) error {
	if err := q.Authorize(callerID); err != nil {
		return err
	}
	q.chain.Append(track)
	q.touch()
	return nil
}

// RemoveTrack removes a track. The current track can only be removed while paused.
func (q *Queue) RemoveTrack(callerID snowflake.ID, id TrackID) error {
	if err := q.Authorize(callerID); err != nil {
		return err
	}
	wasCurrent := q.chain.IndexOf(id) == 0
	if _, err := q.chain.Remove(id, q.paused); err != nil {
		return err
	}
	if wasCurrent {
		q.positionMs = 0
	}
	q.touch()
	return nil
}

// MoveTrack relocates a track to newIndex in the resulting order.
func (q *Queue) MoveTrack(callerID snowflake.ID, id TrackID, newIndex int) error {
	if err := q.Authorize(callerID); err != nil {
		return err
	}
	previousHead := q.chain.Current()
	if err := q.chain.Move(id, newIndex); err != nil {
		return err
	}
	if head := q.chain.Current(); previousHead == nil || head == nil || head.ID != previousHead.ID {
		q.positionMs = 0
	}
	q.touch()
	return nil
}

// Advance drops the current track, typically because it finished playing.
// It returns the dropped track, or nil if the queue was already empty.
// The play state is unchanged.
func (q *Queue) Advance(callerID snowflake.ID) (*Track, error) {
	if err := q.Authorize(callerID); err != nil {
		return nil, err
	}
	finished := q.chain.Advance()
	if finished == nil {
		return nil, nil
	}
	q.positionMs = 0
	q.touch()
	return finished, nil
}

// Play transitions to Playing. Already playing is a no-op.
func (q *Queue) Play(callerID snowflake.ID) error {
	if err := q.Authorize(callerID); err != nil {
		return err
	}
	if q.paused {
		q.paused = false
		q.touch()
	}
	return nil
}

// Pause transitions to Paused. Already paused is a no-op.
func (q *Queue) Pause(callerID snowflake.ID) error {
	if err := q.Authorize(callerID); err != nil {
		return err
	}
	if !q.paused {
		q.paused = true
		q.touch()
	}
	return nil
}

// Seek sets the playback position within the current track.
func (q *Queue) Seek(callerID snowflake.ID, positionMs int64) error {
	if err := q.Authorize(callerID); err != nil {
		return err
	}
	if positionMs < 0 {
		return &ValidationError{Subject: "position", Invalid: []string{"position_ms"}}
	}
	if q.chain.IsEmpty() {
		return fmt.Errorf("%w: nothing is queued", ErrConflict)
	}
	q.positionMs = positionMs
	q.touch()
	return nil
}

// Join adds the participant. Returns false if the user already participates.
func (q *Queue) Join(p Participant) bool {
	if q.IsParticipant(p.UserID) {
		return false
	}
	q.participants = append(q.participants, p)
	q.touch()
	return true
}

// Leave removes the user from the participants. The creator can never leave.
// Returns false if the user was not a participant.
func (q *Queue) Leave(userID snowflake.ID) (bool, error) {
	if q.IsCreator(userID) {
		return false, ErrCreatorCannotLeave
	}
	index := q.participantIndex(userID)
	if index < 0 {
		return false, nil
	}
	q.participants = slices.Delete(q.participants, index, index+1)
	q.touch()
	return true, nil
}

// RemoveParticipant lets the creator remove another participant.
func (q *Queue) RemoveParticipant(callerID, targetID snowflake.ID) error {
	if err := q.AuthorizeCreator(callerID); err != nil {
		return err
	}
	if q.IsCreator(targetID) {
		return ErrCannotRemoveCreator
	}
	index := q.participantIndex(targetID)
	if index < 0 {
		return ErrParticipantNotFound
	}
	q.participants = slices.Delete(q.participants, index, index+1)
	q.touch()
	return nil
}

// CheckInvariants verifies the chain links and the membership rules.
func (q *Queue) CheckInvariants() error {
	if err := q.chain.CheckLinks(); err != nil {
		return err
	}
	if !q.IsParticipant(q.creatorID) {
		return fmt.Errorf("creator %s is not a participant", q.creatorID)
	}
	seen := make(map[snowflake.ID]struct{}, len(q.participants))
	for _, p := range q.participants {
		if _, dup := seen[p.UserID]; dup {
			return fmt.Errorf("duplicate participant %s", p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}

func (q *Queue) participantIndex(userID snowflake.ID) int {
	return slices.IndexFunc(q.participants, func(p Participant) bool {
		return p.UserID == userID
	})
}

func (q *Queue) touch() {
	q.updatedAt = time.Now().UTC()
}
