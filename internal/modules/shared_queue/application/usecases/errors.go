package usecases

import (
	"errors"

	"github.com/sglre6355/queueshare/internal/modules/shared_queue/domain"
)

// Error kinds returned by QueueService. Match them with errors.Is.
var (
	ErrNotFound     = domain.ErrNotFound
	ErrUnauthorized = domain.ErrUnauthorized
	ErrConflict     = domain.ErrConflict
	ErrValidation   = domain.ErrValidation
)

var (
	// ErrUserLookupFailed is returned when the user directory cannot resolve
	// the caller's display name.
	ErrUserLookupFailed = errors.New("failed to resolve user")

	// ErrLockFailed is returned when the queue lock cannot be acquired.
	ErrLockFailed = errors.New("failed to lock queue")
)
