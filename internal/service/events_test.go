package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func newEventFixture() (*memStore, *ReservationService, *EventService) {
	store := newMemStore()
	res := NewReservationService(store, memRegs{store}, nil, 10)
	return store, res, NewEventService(store, res, 10)
}

func validInput() EventInput {
	return EventInput{
		Title:       " Jazz Night ",
		Description: "Live quartet",
		Location:    "Lisbon",
		StartTime:   time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		TotalSeats:  40,
	}
}

func TestCreateEventDefaultsToDraft(t *testing.T) {
	_, _, svc := newEventFixture()
	ev, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", ev.Title)
	assert.Equal(t, model.EventDraft, ev.Status)
	assert.Zero(t, ev.OccupiedSeats)
	assert.NotZero(t, ev.ID)
}

func TestCreateEventValidation(t *testing.T) {
	_, _, svc := newEventFixture()

	in := validInput()
	in.Title = ""
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title is required")

	in = validInput()
	in.StartTime = time.Time{}
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.Status = "archived"
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.Status = model.EventCompleted
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateEventLifecycle(t *testing.T) {
	_, _, svc := newEventFixture()
	ev, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), ev.ID, EventPatch{Status: ptr(model.EventPublished), Title: ptr("Jazz")})
	require.NoError(t, err)
	assert.Equal(t, model.EventPublished, got.Status)
	assert.Equal(t, "Jazz", got.Title)
	assert.Equal(t, ev.Version+1, got.Version)

	_, err = svc.Update(context.Background(), ev.ID, EventPatch{Status: ptr(model.EventPublished)})
	require.NoError(t, err, "same status is a no-op transition")

	_, err = svc.Update(context.Background(), ev.ID, EventPatch{Status: ptr(model.EventCancelled)})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), ev.ID, EventPatch{Status: ptr(model.EventPublished)})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateEventCapacityGuard(t *testing.T) {
	store, res, svc := newEventFixture()
	id := store.put(publishedEvent(5, 0))
	for i := 0; i < 5; i++ {
		_, err := res.Register(context.Background(), id, Registrant{Name: "Guest", Email: "guest@example.com"})
		require.NoError(t, err)
	}

	_, err := svc.Update(context.Background(), id, EventPatch{TotalSeats: ptr(uint32(3))})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = svc.Update(context.Background(), id, EventPatch{TotalSeats: ptr(uint32(3)), Title: ptr("Smaller")})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	got, err := svc.Update(context.Background(), id, EventPatch{TotalSeats: ptr(uint32(10))})
	require.NoError(t, err)
	assert.Equal(t, uint32(10), got.TotalSeats)
	assert.Equal(t, uint32(5), store.event(id).OccupiedSeats)
}

func TestUpdateEventNeverTouchesOccupancy(t *testing.T) {
	store, _, svc := newEventFixture()
	id := store.put(publishedEvent(10, 4))

	_, err := svc.Update(context.Background(), id, EventPatch{Location: ptr("Porto"), ImageRef: ptr("img/porto.jpg")})
	require.NoError(t, err)
	ev := store.event(id)
	assert.Equal(t, uint32(4), ev.OccupiedSeats)
	assert.Equal(t, "Porto", ev.Location)
	assert.Equal(t, "img/porto.jpg", ev.ImageRef)
}

func TestUpdateEventRejectsBlankTitle(t *testing.T) {
	store, _, svc := newEventFixture()
	id := store.put(publishedEvent(10, 0))
	_, err := svc.Update(context.Background(), id, EventPatch{Title: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateMissingEvent(t *testing.T) {
	_, _, svc := newEventFixture()
	_, err := svc.Update(context.Background(), 42, EventPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteEvent(t *testing.T) {
	store, res, svc := newEventFixture()
	empty := store.put(publishedEvent(5, 0))
	busy := store.put(publishedEvent(5, 0))
	_, err := res.Register(context.Background(), busy, Registrant{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), empty))
	assert.ErrorIs(t, svc.Delete(context.Background(), empty), ErrEventNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), busy), repository.ErrConflict)
}
