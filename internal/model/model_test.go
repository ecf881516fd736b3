package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestCanTransitionEvent(t *testing.T) {
    cases := []struct {
        from, to string
        ok       bool
    }{
        {EventDraft, EventPublished, true},
        {EventDraft, EventCancelled, true},
        {EventDraft, EventCompleted, false},
        {EventPublished, EventDraft, true},
        {EventPublished, EventCompleted, true},
        {EventPublished, EventPublished, true},
        {EventCancelled, EventPublished, false},
        {EventCompleted, EventDraft, false},
        {EventDraft, "archived", false},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.ok, CanTransitionEvent(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
    }
}

func TestCanTransitionRegistration(t *testing.T) {
    assert.True(t, CanTransitionRegistration(RegistrationPending, RegistrationConfirmed))
    assert.True(t, CanTransitionRegistration(RegistrationPending, RegistrationCancelled))
    assert.False(t, CanTransitionRegistration(RegistrationConfirmed, RegistrationConfirmed))
    assert.False(t, CanTransitionRegistration(RegistrationConfirmed, RegistrationCancelled))
    assert.False(t, CanTransitionRegistration(RegistrationCancelled, RegistrationPending))
    assert.False(t, CanTransitionRegistration(RegistrationPending, RegistrationPending))
}

func TestRemainingSeats(t *testing.T) {
    assert.Equal(t, uint32(3), Event{TotalSeats: 5, OccupiedSeats: 2}.RemainingSeats())
    assert.Equal(t, uint32(0), Event{TotalSeats: 5, OccupiedSeats: 5}.RemainingSeats())
}
