package model

import "time"

// Event status values.  Only published events accept registrations;
// cancelled and completed are terminal.
const (
    EventDraft     = "draft"
    EventPublished = "published"
    EventCancelled = "cancelled"
    EventCompleted = "completed"
)

// Event is a listed happening with a fixed number of seats.
//
// Fields:
//  OccupiedSeats – seats claimed by registrations; always
//                  0 <= OccupiedSeats <= TotalSeats.  Changed only by the
//                  reservation service.
//  Version       – bumped on every admin edit and used as the optimistic
//                  concurrency token for multi-field updates.  Seat
//                  claims are guarded by the counts and leave it alone.
type Event struct {
    ID            uint64    `json:"id"`            // events.id
    Title         string    `json:"title"`         // events.title
    Description   string    `json:"description"`   // events.description
    Location      string    `json:"location"`      // events.location
    StartTime     time.Time `json:"startTime"`     // events.start_time (UTC)
    TotalSeats    uint32    `json:"totalSeats"`    // events.total_seats
    OccupiedSeats uint32    `json:"occupiedSeats"` // events.occupied_seats
    Status        string    `json:"status"`        // events.status
    ImageRef      string    `json:"imageRef,omitempty"`
    Version       uint32    `json:"version"`
    CreatedAt     time.Time `json:"createdAt"`
    UpdatedAt     time.Time `json:"updatedAt"`
}

// RemainingSeats reports how many seats are still free.
func (e Event) RemainingSeats() uint32 {
    if e.OccupiedSeats >= e.TotalSeats {
        return 0
    }
    return e.TotalSeats - e.OccupiedSeats
}

var eventTransitions = map[string][]string{
    EventDraft:     {EventPublished, EventCancelled},
    EventPublished: {EventCancelled, EventCompleted, EventDraft},
}

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s string) bool {
    switch s {
    case EventDraft, EventPublished, EventCancelled, EventCompleted:
        return true
    }
    return false
}

// CanTransitionEvent reports whether an event may move from one status to
// another.  Re-applying the current status is allowed and is a no-op.
func CanTransitionEvent(from, to string) bool {
    if !ValidEventStatus(to) {
        return false
    }
    if from == to {
        return true
    }
    for _, next := range eventTransitions[from] {
        if next == to {
            return true
        }
    }
    return false
}
