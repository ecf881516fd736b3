package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
)

// EventInput carries the admin-editable fields of an event.  The same rules
// apply on create and on the merged result of a patch.
type EventInput struct {
	Title       string    `validate:"required,max=200"`
	Description string    `validate:"required"`
	Location    string    `validate:"required,max=255"`
	StartTime   time.Time `validate:"required"`
	TotalSeats  uint32
	Status      string `validate:"omitempty,oneof=draft published cancelled completed"`
	ImageRef    string `validate:"max=500"`
}

// EventPatch is a partial update; nil fields are left untouched.
// OccupiedSeats is deliberately absent.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	ImageRef    *string
	TotalSeats  *uint32
	Status      *string
}

func (p EventPatch) onlyTotalSeats() bool {
	return p.TotalSeats != nil && p.Title == nil && p.Description == nil && p.Location == nil &&
		p.StartTime == nil && p.ImageRef == nil && p.Status == nil
}

// CapacitySetter changes total seats under the occupancy guard.
type CapacitySetter interface {
	SetCapacity(ctx context.Context, eventID uint64, totalSeats uint32) (*model.Event, error)
}

// EventService implements admin CRUD for events.  It never writes
// occupied seats.
type EventService struct {
	events      EventStore
	capacity    CapacitySetter
	maxAttempts int
}

func NewEventService(events EventStore, capacity CapacitySetter, maxAttempts int) *EventService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &EventService{events: events, capacity: capacity, maxAttempts: maxAttempts}
}

func (in *EventInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.ImageRef = strings.TrimSpace(in.ImageRef)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.StartTime = in.StartTime.UTC()
}

// Create stores a new event with zero occupied seats.  Status defaults to
// draft; an event may also be created straight into any state reachable
// from draft.
func (s *EventService) Create(ctx context.Context, in EventInput) (*model.Event, error) {
	in.normalize()
	if err := Validate(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.EventDraft
	}
	if !model.CanTransitionEvent(model.EventDraft, in.Status) {
		return nil, fmt.Errorf("%w: new event cannot start as %s", ErrInvalidTransition, in.Status)
	}
	ev := &model.Event{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartTime:   in.StartTime,
		TotalSeats:  in.TotalSeats,
		Status:      in.Status,
		ImageRef:    in.ImageRef,
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Update applies p under optimistic concurrency on the event version.
// Lowering total seats below occupied fails with ErrInvalidCapacity and an
// illegal status change with ErrInvalidTransition.
func (s *EventService) Update(ctx context.Context, id uint64, p EventPatch) (*model.Event, error) {
	if p.onlyTotalSeats() && s.capacity != nil {
		return s.capacity.SetCapacity(ctx, id, *p.TotalSeats)
	}
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		cur, err := s.events.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load event: %w", err)
		}

		next, err := applyPatch(cur, p)
		if err != nil {
			return nil, err
		}
		if !model.CanTransitionEvent(cur.Status, next.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, next.Status)
		}
		if next.TotalSeats < cur.OccupiedSeats {
			return nil, fmt.Errorf("%w: %d < %d", ErrInvalidCapacity, next.TotalSeats, cur.OccupiedSeats)
		}

		err = s.events.Update(ctx, &next, cur.Version)
		if errors.Is(err, repository.ErrStale) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update event: %w", err)
		}
		next.UpdatedAt = time.Now().UTC()
		return &next, nil
	}
	return nil, ErrConflict
}

func applyPatch(cur model.Event, p EventPatch) (model.Event, error) {
	in := EventInput{
		Title:       cur.Title,
		Description: cur.Description,
		Location:    cur.Location,
		StartTime:   cur.StartTime,
		TotalSeats:  cur.TotalSeats,
		Status:      cur.Status,
		ImageRef:    cur.ImageRef,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Location != nil {
		in.Location = *p.Location
	}
	if p.StartTime != nil {
		in.StartTime = *p.StartTime
	}
	if p.ImageRef != nil {
		in.ImageRef = *p.ImageRef
	}
	if p.TotalSeats != nil {
		in.TotalSeats = *p.TotalSeats
	}
	if p.Status != nil {
		in.Status = *p.Status
	}
	in.normalize()
	if err := Validate(in); err != nil {
		return model.Event{}, err
	}

	next := cur
	next.Title = in.Title
	next.Description = in.Description
	next.Location = in.Location
	next.StartTime = in.StartTime
	next.ImageRef = in.ImageRef
	next.TotalSeats = in.TotalSeats
	next.Status = in.Status
	return next, nil
}

// Delete removes an event.  Events with registrations cannot be deleted
// (repository.ErrConflict); cancel them instead.
func (s *EventService) Delete(ctx context.Context, id uint64) error {
	err := s.events.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	return err
}

func (s *EventService) Get(ctx context.Context, id uint64) (*model.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *EventService) List(ctx context.Context, f repository.EventFilter) ([]model.Event, int64, error) {
	return s.events.List(ctx, f)
}
