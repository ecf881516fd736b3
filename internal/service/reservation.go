package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
)

const publishTimeout = 5 * time.Second

// Registrant is the public input for Register.
type Registrant struct {
	Name  string `validate:"required,max=255"`
	Email string `validate:"required,email,max=190"`
}

// ReservationService is the only path through which an event's occupied
// seat count changes.  Seat claims and capacity changes are conditional
// writes guarded by the seat counts, so concurrent callers only miss when
// the event really filled up (or was unpublished) in between.  A miss
// re-reads the event, which then reports the reason; maxAttempts bounds
// the loop.
type ReservationService struct {
	events      EventStore
	regs        RegistrationStore
	pub         Publisher
	maxAttempts int
}

func NewReservationService(events EventStore, regs RegistrationStore, pub Publisher, maxAttempts int) *ReservationService {
	if pub == nil {
		pub = NopPublisher{}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ReservationService{events: events, regs: regs, pub: pub, maxAttempts: maxAttempts}
}

// Register creates a pending registration and claims one seat of the event
// as a single unit.  A full event fails with ErrCapacityExceeded and writes
// nothing.
func (s *ReservationService) Register(ctx context.Context, eventID uint64, in Registrant) (*model.Registration, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := Validate(in); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := s.events.GetByID(ctx, eventID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load event: %w", err)
		}
		if ev.Status != model.EventPublished {
			return nil, ErrEventNotPublished
		}
		if ev.OccupiedSeats >= ev.TotalSeats {
			return nil, ErrCapacityExceeded
		}

		reg := &model.Registration{EventID: eventID, Name: in.Name, Email: in.Email}
		occupied, err := s.regs.Reserve(ctx, reg)
		if errors.Is(err, repository.ErrStale) {
			// Filled up or unpublished since the read; the re-read reports which.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reserve seat: %w", err)
		}

		s.publish(ctx, queue.RegistrationEvent{
			Type:           queue.TypeRegistrationCreated,
			RegistrationID: reg.ID,
			EventID:        eventID,
			EventTitle:     ev.Title,
			Name:           reg.Name,
			Email:          reg.Email,
			Status:         reg.Status,
			OccupiedSeats:  occupied,
			TotalSeats:     ev.TotalSeats,
		})
		return reg, nil
	}
	return nil, ErrConflict
}

// SetStatus moves a registration along pending→confirmed or
// pending→cancelled.  Cancelling does not release the seat.
func (s *ReservationService) SetStatus(ctx context.Context, registrationID uint64, status string) (*model.Registration, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		cur, err := s.regs.GetByID(ctx, registrationID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load registration: %w", err)
		}
		if !model.CanTransitionRegistration(cur.Status, status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, status)
		}

		err = s.regs.TransitionStatus(ctx, registrationID, cur.Status, status)
		if errors.Is(err, repository.ErrStale) {
			// Someone else moved it; the re-read decides.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update registration: %w", err)
		}

		prev := cur.Status
		cur.Status = status
		cur.UpdatedAt = time.Now().UTC()
		s.publish(ctx, queue.RegistrationEvent{
			Type:           queue.TypeRegistrationStatusChanged,
			RegistrationID: cur.ID,
			EventID:        cur.EventID,
			Name:           cur.Name,
			Email:          cur.Email,
			Status:         status,
			PreviousStatus: prev,
		})
		return &cur, nil
	}
	return nil, ErrConflict
}

// SetCapacity changes an event's total seats.  The occupancy guard is part
// of the conditional write, so a registration landing between the read and
// the write cannot push occupied above total.
func (s *ReservationService) SetCapacity(ctx context.Context, eventID uint64, totalSeats uint32) (*model.Event, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		ev, err := s.events.GetByID(ctx, eventID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load event: %w", err)
		}
		if totalSeats < ev.OccupiedSeats {
			return nil, fmt.Errorf("%w: %d < %d", ErrInvalidCapacity, totalSeats, ev.OccupiedSeats)
		}

		err = s.events.SetTotalSeats(ctx, eventID, totalSeats)
		if errors.Is(err, repository.ErrStale) {
			// Occupancy outgrew the new total, or the event is gone.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("set capacity: %w", err)
		}
		// Registrations may have landed meanwhile; report the stored row.
		if fresh, err := s.events.GetByID(ctx, eventID); err == nil {
			return &fresh, nil
		}
		ev.TotalSeats = totalSeats
		return &ev, nil
	}
	return nil, ErrConflict
}

// Get returns one registration.
func (s *ReservationService) Get(ctx context.Context, id uint64) (*model.Registration, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// List returns a page of registrations.
func (s *ReservationService) List(ctx context.Context, f repository.RegistrationFilter) ([]model.Registration, int64, error) {
	return s.regs.List(ctx, f)
}

// publish is best effort: the write it describes is already committed.
func (s *ReservationService) publish(ctx context.Context, ev queue.RegistrationEvent) {
	ev.OccurredAt = time.Now().UTC()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.pub.Publish(pctx, ev); err != nil {
		log.Printf("reservation: publish %s for registration %d failed: %v", ev.Type, ev.RegistrationID, err)
	}
}
