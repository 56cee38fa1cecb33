package usecases

import (
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Queue is an alias for domain.Queue.
type Queue = domain.Queue

// QueueID is an alias for domain.QueueID.
type QueueID = domain.QueueID

// Track is an alias for domain.Track.
type Track = domain.Track

// TrackID is an alias for domain.TrackID.
type TrackID = domain.TrackID

// TrackInput is an alias for domain.TrackInput.
type TrackInput = domain.TrackInput

// Artwork is an alias for domain.Artwork.
type Artwork = domain.Artwork

// Participant is an alias for domain.Participant.
type Participant = domain.Participant

// QueueRepository is an alias for domain.QueueRepository.
type QueueRepository = domain.QueueRepository

// ValidationError is an alias for domain.ValidationError.
type ValidationError = domain.ValidationError

// ParseQueueID validates a user-supplied queue id.
var ParseQueueID = domain.ParseQueueID
