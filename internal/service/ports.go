package service

import (
	"context"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
)

// EventStore is the persistence the services need for events.  Conditional
// writes return repository.ErrStale when their guard misses.  Update is
// versioned; SetTotalSeats is guarded by occupancy alone.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	List(ctx context.Context, f repository.EventFilter) ([]model.Event, int64, error)
	Update(ctx context.Context, e *model.Event, expectedVersion uint32) error
	SetTotalSeats(ctx context.Context, id uint64, total uint32) error
	Delete(ctx context.Context, id uint64) error
}

// RegistrationStore is the persistence the reservation service needs.
type RegistrationStore interface {
	// Reserve claims a seat only while the event is published and not full.
	Reserve(ctx context.Context, reg *model.Registration) (occupied uint32, err error)
	GetByID(ctx context.Context, id uint64) (model.Registration, error)
	List(ctx context.Context, f repository.RegistrationFilter) ([]model.Registration, int64, error)
	TransitionStatus(ctx context.Context, id uint64, from, to string) error
}

// Publisher emits registration domain events.
type Publisher interface {
	Publish(ctx context.Context, ev queue.RegistrationEvent) error
}

var (
	_ EventStore        = (*repository.EventRepo)(nil)
	_ RegistrationStore = (*repository.RegistrationRepo)(nil)
	_ Publisher         = (*RegistrationPublisher)(nil)
	_ Publisher         = NopPublisher{}
)
