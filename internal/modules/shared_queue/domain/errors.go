package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the queue engine matches exactly one
// of these via errors.Is, so callers can map failures to outcomes.
var (
	// ErrNotFound is the kind for absent queues, tracks and participants.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is the kind for callers lacking the required membership or role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict is the kind for operations refused by the current queue state.
	ErrConflict = errors.New("conflict")

	// ErrValidation is the kind for malformed input.
	ErrValidation = errors.New("validation failed")
)

// Specific errors.
var (
	ErrQueueNotFound       = fmt.Errorf("queue %w", ErrNotFound)
	ErrTrackNotFound       = fmt.Errorf("track %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)

	ErrNotParticipant = fmt.Errorf("%w: caller is not a participant of this queue", ErrUnauthorized)
	ErrNotCreator     = fmt.Errorf("%w: only the queue creator can do this", ErrUnauthorized)

	// ErrCurrentTrackPlaying is returned when removing the head track while playing.
	// An external player may already be consuming it.
	ErrCurrentTrackPlaying = fmt.Errorf("%w: cannot remove the current track while playing", ErrConflict)
	ErrIndexOutOfRange     = fmt.Errorf("%w: index out of range", ErrConflict)
	ErrCreatorCannotLeave  = fmt.Errorf("%w: the creator cannot leave their own queue", ErrConflict)
	ErrCannotRemoveCreator = fmt.Errorf("%w: the creator cannot be removed from the queue", ErrConflict)
	ErrQueueExists         = fmt.Errorf("%w: creator already owns a queue", ErrConflict)

	// ErrVersionConflict is returned by repositories when the stored queue
	// changed between load and save.
	ErrVersionConflict = fmt.Errorf("%w: queue was modified concurrently", ErrConflict)
)

// ValidationError lists every required field missing from an input, plus any
// field holding an invalid value.
type ValidationError struct {
	Subject string
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

// Is reports whether target is the ErrValidation kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}
