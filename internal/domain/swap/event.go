package swap

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventProposed  EventType = "swap_proposed"
	EventAccepted  EventType = "swap_accepted"
	EventRejected  EventType = "swap_rejected"
	EventCancelled EventType = "swap_cancelled"
	EventRated     EventType = "swap_rated"
	EventCompleted EventType = "swap_completed"
	EventProgress  EventType = "swap_progress"
)

// Event tells one user that a swap they take part in changed.
type Event struct {
	Type       EventType
	Target     uuid.UUID
	Actor      uuid.UUID
	SwapID     uuid.UUID
	Status     Status
	OccurredAt time.Time
}

func NewEvent(t EventType, target, actor uuid.UUID, s Swap, at time.Time) Event {
	return Event{
		Type:       t,
		Target:     target,
		Actor:      actor,
		SwapID:     s.ID,
		Status:     s.Status,
		OccurredAt: at.UTC(),
	}
}
