package model

import "time"

const (
    RegistrationPending   = "pending"
    RegistrationConfirmed = "confirmed"
    RegistrationCancelled = "cancelled"
)

// Registration is one registrant's claim on a single seat of an event.
// Cancelling a registration does not release its seat.
type Registration struct {
    ID        uint64    `json:"id"`        // registrations.id
    EventID   uint64    `json:"eventId"`   // registrations.event_id
    Name      string    `json:"name"`      // registrations.name
    Email     string    `json:"email"`     // registrations.email
    Status    string    `json:"status"`    // registrations.status
    CreatedAt time.Time `json:"createdAt"` // registrations.created_at
    UpdatedAt time.Time `json:"updatedAt"` // registrations.updated_at

    EventTitle string `json:"eventTitle,omitempty"` // events.title, filled by listings
}

// CanTransitionRegistration: pending may become confirmed or cancelled;
// nothing else moves, including confirmed -> confirmed.
func CanTransitionRegistration(from, to string) bool {
    return from == RegistrationPending &&
        (to == RegistrationConfirmed || to == RegistrationCancelled)
}
