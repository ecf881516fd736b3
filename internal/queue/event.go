// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import "time"

// RegistrationQueue is the default durable queue carrying registration
// domain events.
const RegistrationQueue = "registration.events"

// Event types carried in RegistrationEvent.Type.
const (
    TypeRegistrationCreated       = "registration.created"
    TypeRegistrationStatusChanged = "registration.status_changed"
)

// RegistrationEvent is published after a registration is committed or its
// status changes.  It carries enough for downstream consumers to log or
// notify without querying the primary database.
type RegistrationEvent struct {
    Type           string    `json:"type"`
    RegistrationID uint64    `json:"registrationId"`
    EventID        uint64    `json:"eventId"`
    EventTitle     string    `json:"eventTitle,omitempty"`
    Name           string    `json:"name,omitempty"`
    Email          string    `json:"email"`
    Status         string    `json:"status"`
    PreviousStatus string    `json:"previousStatus,omitempty"`
    OccupiedSeats  uint32    `json:"occupiedSeats,omitempty"`
    TotalSeats     uint32    `json:"totalSeats,omitempty"`
    OccurredAt     time.Time `json:"occurredAt"`
}
