package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/event-registration/internal/repository"
)

var (
	// ErrCapacityExceeded: the event has no free seat left.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrEventNotPublished: registrations are only accepted on published events.
	ErrEventNotPublished = errors.New("event not published")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidCapacity: total seats would drop below occupied seats.
	ErrInvalidCapacity = errors.New("total seats below occupied seats")
	// ErrConflict: optimistic retries were exhausted.  Safe to retry.
	ErrConflict   = errors.New("concurrent modification, retry")
	ErrValidation = errors.New("validation failed")

	// Both match repository.ErrNotFound with errors.Is.
	ErrEventNotFound        = fmt.Errorf("event %w", repository.ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("registration %w", repository.ErrNotFound)
)
